// Package session decides what a learner sees next. It keeps no per-user
// state: every review or test step is resumed from the Token attached to the
// button the learner pressed.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/metrics"
	"github.com/example/wordbot/internal/vocabulary"
	"github.com/example/wordbot/pkg/models"
)

// DefaultThreshold is the number of confirmations after which a word is mastered
const DefaultThreshold = 5

// WordStore gives read access to cached words
type WordStore interface {
	GetByID(ctx context.Context, id int64) (*models.Word, error)
	Count(ctx context.Context) (int, error)
	GetByOffset(ctx context.Context, offset int) (*models.Word, error)
}

// UserStore resolves learners
type UserStore interface {
	GetOrCreate(ctx context.Context, externalID string) (*models.User, bool, error)
}

// ProgressStore persists per-learner word progress
type ProgressStore interface {
	GetByID(ctx context.Context, id int64) (*models.UserProgress, error)
	GetOrCreate(ctx context.Context, userID, wordID int64) (*models.UserProgress, bool, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Increment(ctx context.Context, userID, id int64) (*models.UserProgress, error)
	Reset(ctx context.Context, id int64) error
	NextAfter(ctx context.Context, userID, afterID int64, threshold int) (*models.UserProgress, error)
	UnmasteredIDs(ctx context.Context, userID int64, threshold int) ([]int64, error)
}

// Lookuper resolves free text into a word
type Lookuper interface {
	Lookup(ctx context.Context, raw string) (*models.Word, error)
}

// Config holds the engine settings
type Config struct {
	Threshold int
}

// Option customizes an Engine
type Option func(*Engine)

// WithRand replaces the random source used by shuffle review and tests
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rnd = r
	}
}

// ErrUnknownCommand is returned for commands the engine does not handle
var ErrUnknownCommand = errors.New("unknown command")

// errNoCard means no unmastered card is left
var errNoCard = errors.New("no card to review")

// Engine handles learner events
type Engine struct {
	words     WordStore
	users     UserStore
	progress  ProgressStore
	lookup    Lookuper
	threshold int
	logger    logrus.FieldLogger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewEngine creates an engine over the given stores
func NewEngine(cfg Config, words WordStore, users UserStore, progress ProgressStore, lookup Lookuper, logger logrus.FieldLogger, opts ...Option) *Engine {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	e := &Engine{
		words:     words,
		users:     users,
		progress:  progress,
		lookup:    lookup,
		threshold: threshold,
		logger:    logger,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleCommand handles /start, /help, /review and /test
func (e *Engine) HandleCommand(ctx context.Context, learnerID, name string) (*Result, error) {
	switch name {
	case "start":
		_, created, err := e.users.GetOrCreate(ctx, learnerID)
		if err != nil {
			return nil, err
		}
		if created {
			e.logger.WithField("learner", learnerID).Info("new learner")
			return textResult(greetingNew), nil
		}
		return textResult(greetingAgain), nil
	case "help":
		return textResult(helpText), nil
	case "review":
		return e.startReview(ctx, learnerID)
	case "test":
		return e.testNext(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
}

// HandleText looks up a word sent as free text and puts it on the learner's
// review list. Looking up a word again resets its progress.
func (e *Engine) HandleText(ctx context.Context, learnerID, text string) (*Result, error) {
	word, err := e.lookup.Lookup(ctx, text)
	switch {
	case err == nil:
	case errors.Is(err, vocabulary.ErrInvalidInput):
		return textResult(invalidInputText), nil
	case errors.Is(err, vocabulary.ErrLookupFailure):
		return textResult(lookupFailedText), nil
	case errors.Is(err, vocabulary.ErrNotFound):
		return textResult(notFoundText), nil
	default:
		return nil, err
	}

	user, _, err := e.users.GetOrCreate(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	progress, created, err := e.progress.GetOrCreate(ctx, user.ID, word.ID)
	if err != nil {
		return nil, err
	}
	if !created && progress.CheckTimes > 0 {
		if err := e.progress.Reset(ctx, progress.ID); err != nil {
			return nil, err
		}
		e.logger.WithFields(logrus.Fields{
			"learner": learnerID,
			"word":    word.Word,
			"was":     progress.CheckTimes,
		}).Debug("progress reset after lookup")
	}

	return &Result{Kind: KindText, Text: word.String(), AudioPath: word.AudioPath()}, nil
}

// HandleAction resumes a flow from the data of a pressed button
func (e *Engine) HandleAction(ctx context.Context, learnerID, data string) (*Result, error) {
	tok, err := ParseToken(data)
	if err != nil {
		e.logger.WithError(err).WithField("learner", learnerID).Warn("rejected callback data")
		return terminalResult(UnknownCommandText), nil
	}
	metrics.RecordSessionAction(string(tok.Command), string(tok.Mode))

	if tok.Command == CommandReview {
		return e.review(ctx, learnerID, tok)
	}
	switch tok.Mode {
	case ModeAsk:
		return e.testAsk(ctx, tok.Arg)
	case ModeCheck:
		return e.testCheck(ctx, learnerID, tok.Arg)
	default:
		return e.testNext(ctx)
	}
}

func (e *Engine) startReview(ctx context.Context, learnerID string) (*Result, error) {
	user, _, err := e.users.GetOrCreate(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	count, err := e.progress.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return terminalResult(emptyReviewText), nil
	}

	sequential, err := control(labelSequential, Token{Command: CommandReview, Mode: ModeSequential})
	if err != nil {
		return nil, err
	}
	shuffle, err := control(labelShuffle, Token{Command: CommandReview, Mode: ModeShuffle})
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:     KindInteractive,
		Text:     reviewPromptText,
		Controls: [][]Control{{sequential, shuffle}},
	}, nil
}

// review applies the pending confirmation, if any, and shows the next card
func (e *Engine) review(ctx context.Context, learnerID string, tok Token) (*Result, error) {
	user, _, err := e.users.GetOrCreate(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	var notice string
	if tok.Check {
		progress, err := e.progress.Increment(ctx, user.ID, tok.Arg)
		if errors.Is(err, database.ErrNotFound) {
			return terminalResult(wordGoneText), nil
		}
		if err != nil {
			return nil, err
		}
		notice = e.reviewNotice(progress.CheckTimes)
	}

	var next *models.UserProgress
	if tok.Mode == ModeShuffle {
		next, err = e.nextShuffled(ctx, user.ID)
	} else {
		next, err = e.nextSequential(ctx, user.ID, tok.Arg)
	}
	if errors.Is(err, errNoCard) {
		return &Result{Kind: KindTerminal, Notice: notice, Text: reviewEndText}, nil
	}
	if err != nil {
		return nil, err
	}

	word, err := e.words.GetByID(ctx, next.WordID)
	if errors.Is(err, database.ErrNotFound) {
		return &Result{Kind: KindTerminal, Notice: notice, Text: wordGoneText}, nil
	}
	if err != nil {
		return nil, err
	}

	affirm, err := control(labelAffirm, Token{Command: CommandReview, Mode: tok.Mode, Arg: next.ID, Check: true})
	if err != nil {
		return nil, err
	}
	skip, err := control(labelSkip, Token{Command: CommandReview, Mode: tok.Mode, Arg: next.ID})
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:      KindInteractive,
		Notice:    notice,
		Text:      word.String(),
		AudioPath: word.AudioPath(),
		Controls:  [][]Control{{affirm, skip}},
	}, nil
}

// nextSequential returns the first unmastered card after cursor, wrapping
// around to the first one once the end is reached.
func (e *Engine) nextSequential(ctx context.Context, userID, cursor int64) (*models.UserProgress, error) {
	next, err := e.progress.NextAfter(ctx, userID, cursor, e.threshold)
	if errors.Is(err, database.ErrNotFound) && cursor > 0 {
		next, err = e.progress.NextAfter(ctx, userID, 0, e.threshold)
	}
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNoCard
	}
	return next, err
}

// nextShuffled draws uniformly among the unmastered cards
func (e *Engine) nextShuffled(ctx context.Context, userID int64) (*models.UserProgress, error) {
	ids, err := e.progress.UnmasteredIDs(ctx, userID, e.threshold)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errNoCard
	}
	next, err := e.progress.GetByID(ctx, ids[e.intn(len(ids))])
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNoCard
	}
	return next, err
}

func (e *Engine) testNext(ctx context.Context) (*Result, error) {
	count, err := e.words.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return terminalResult(emptyTestText), nil
	}

	word, err := e.words.GetByOffset(ctx, e.intn(count))
	if errors.Is(err, database.ErrNotFound) {
		return terminalResult(wordGoneText), nil
	}
	if err != nil {
		return nil, err
	}

	ask, err := control(labelAsk, Token{Command: CommandTest, Mode: ModeAsk, Arg: word.ID})
	if err != nil {
		return nil, err
	}
	check, err := control(labelAffirm, Token{Command: CommandTest, Mode: ModeCheck, Arg: word.ID})
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:     KindInteractive,
		Text:     fmt.Sprintf("Test:\n\t%s", word.Word),
		Controls: [][]Control{{ask, check}},
	}, nil
}

// testAsk reveals the answer without touching progress
func (e *Engine) testAsk(ctx context.Context, wordID int64) (*Result, error) {
	word, err := e.words.GetByID(ctx, wordID)
	if errors.Is(err, database.ErrNotFound) {
		return terminalResult(wordGoneText), nil
	}
	if err != nil {
		return nil, err
	}

	check, err := control(labelAffirm, Token{Command: CommandTest, Mode: ModeCheck, Arg: word.ID})
	if err != nil {
		return nil, err
	}
	next, err := control(labelNext, Token{Command: CommandTest, Mode: ModeNext})
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:      KindInteractive,
		Text:      word.String(),
		AudioPath: word.AudioPath(),
		Controls:  [][]Control{{check, next}},
	}, nil
}

// testCheck reveals the answer and counts it as known. Unlike review the
// counter is not capped at the threshold.
func (e *Engine) testCheck(ctx context.Context, learnerID string, wordID int64) (*Result, error) {
	word, err := e.words.GetByID(ctx, wordID)
	if errors.Is(err, database.ErrNotFound) {
		return terminalResult(wordGoneText), nil
	}
	if err != nil {
		return nil, err
	}

	user, _, err := e.users.GetOrCreate(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	progress, _, err := e.progress.GetOrCreate(ctx, user.ID, word.ID)
	if err != nil {
		return nil, err
	}
	progress, err = e.progress.Increment(ctx, user.ID, progress.ID)
	if err != nil {
		return nil, err
	}

	next, err := control(labelNext, Token{Command: CommandTest, Mode: ModeNext})
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:      KindInteractive,
		Text:      word.String() + "\n" + stars(progress.CheckTimes),
		AudioPath: word.AudioPath(),
		Controls:  [][]Control{{next}},
	}, nil
}

// reviewNotice celebrates a mastered word or shows the current count
func (e *Engine) reviewNotice(checkTimes int) string {
	if checkTimes >= e.threshold {
		return strings.Repeat(completionMark, e.threshold)
	}
	return stars(checkTimes)
}

func stars(n int) string {
	if n > maxStars {
		return strings.Repeat(starMark, maxStars) + fmt.Sprintf(" ×%d", n)
	}
	return strings.Repeat(starMark, n)
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Intn(n)
}

func control(label string, tok Token) (Control, error) {
	data, err := tok.Encode()
	if err != nil {
		return Control{}, err
	}
	return Control{Label: label, Data: data}, nil
}
