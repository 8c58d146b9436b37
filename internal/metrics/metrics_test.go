package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordWordLookup(t *testing.T) {
	before := testutil.ToFloat64(wordLookupTotal.WithLabelValues("true"))
	RecordWordLookup(true)
	assert.Equal(t, before+1, testutil.ToFloat64(wordLookupTotal.WithLabelValues("true")))
}

func TestRecordDictionaryRequest(t *testing.T) {
	before := testutil.ToFloat64(dictionaryRequestsTotal.WithLabelValues("not_found"))
	RecordDictionaryRequest("not_found", 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(dictionaryRequestsTotal.WithLabelValues("not_found")))
}

func TestRecordReminder(t *testing.T) {
	okBefore := testutil.ToFloat64(remindersTotal.WithLabelValues("success"))
	errBefore := testutil.ToFloat64(remindersTotal.WithLabelValues("error"))

	RecordReminder(true)
	RecordReminder(false)
	RecordReminder(false)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(remindersTotal.WithLabelValues("success")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(remindersTotal.WithLabelValues("error")))
}
