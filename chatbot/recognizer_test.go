package chatbot

import (
	"edubot/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognizeDefaults(t *testing.T) {
	r := NewRecognizer()

	tests := []struct {
		message string
		intent  string
	}{
		{"hello", "greeting"},
		{"Good Morning everyone", "greeting"},
		{"show me faculty", "faculty_info"},
		{"who teaches algorithms", "faculty_info"},
		{"what's my attendance", "attendance"},
		{"any upcoming events", "events"},
		{"what courses are offered", "courses"},
		{"quiz me", "quiz"},
		{"B", "quiz"},
		{"lecture notes please", "notes"},
		{"help", "help"},
		{"thanks a lot", "thanks"},
		{"bye", "bye"},
		{"xyzzy gibberish", "default"},
	}
	for _, tt := range tests {
		intent, _, _ := r.Recognize(tt.message)
		assert.Equal(t, tt.intent, intent, "message %q", tt.message)
	}
}

func TestRecognizeConfidence(t *testing.T) {
	r := NewRecognizer()

	// Exact keyword message: base 0.7 + verbatim 0.2 + span 0.1, capped
	_, confidence, _ := r.Recognize("hello")
	assert.Equal(t, 0.95, confidence)

	// Catch-all is always low confidence
	intent, confidence, pattern := r.Recognize("completely unrelated rambling about nothing in particular")
	assert.Equal(t, "default", intent)
	assert.Equal(t, 0.3, confidence)
	assert.Equal(t, ".*", pattern)

	// Long message with a short keyword: no span boost
	_, confidence, _ = r.Recognize("could you please tell me what my attendance looks like this semester")
	assert.Equal(t, 0.9, confidence)
}

func TestRecognizeConfidenceBounds(t *testing.T) {
	r := NewRecognizer()

	messages := []string{
		"hello", "hi there how are you doing today my friend",
		"faculty", "attendance please", "events", "courses", "quiz",
		"notes", "help me out", "thank you so much", "goodbye now",
		"asdf qwerty", "A",
	}
	for _, message := range messages {
		_, confidence, _ := r.Recognize(message)
		assert.GreaterOrEqual(t, confidence, 0.1, "message %q", message)
		assert.LessOrEqual(t, confidence, 0.95, "message %q", message)
	}
}

func TestRecognizePriorityOverRowOrder(t *testing.T) {
	db := newTestDB(t)

	// Lower-priority row inserted first; priority must decide, not insertion
	rows := []models.Intent{
		{IntentName: "low", Patterns: `["\\b(ping)\\b"]`, Responses: `["low wins"]`, Priority: 1, IsActive: true},
		{IntentName: "high", Patterns: `["\\b(ping)\\b"]`, Responses: `["high wins"]`, Priority: 9, IsActive: true},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	r := NewRecognizer()
	require.NoError(t, r.LoadIntents(db))

	intent, _, _ := r.Recognize("ping")
	assert.Equal(t, "high", intent)
}

func TestLoadIntentsSkipsMalformedRows(t *testing.T) {
	db := newTestDB(t)

	rows := []models.Intent{
		{IntentName: "valid", Patterns: `["\\b(ping)\\b"]`, Responses: `["pong"]`, Priority: 5, IsActive: true},
		{IntentName: "badjson", Patterns: `{not json`, Responses: `["x"]`, Priority: 8, IsActive: true},
		{IntentName: "badregex", Patterns: `["[unclosed"]`, Responses: `["x"]`, Priority: 8, IsActive: true},
		{IntentName: "inactive", Patterns: `["\\b(pong)\\b"]`, Responses: `["x"]`, Priority: 8, IsActive: false},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	r := NewRecognizer()
	require.NoError(t, r.LoadIntents(db))

	names := r.IntentNames()
	assert.Equal(t, []string{"valid"}, names)

	intent, _, pattern := r.Recognize("ping")
	assert.Equal(t, "valid", intent)
	assert.Equal(t, `\b(ping)\b`, pattern)
}

func TestLoadIntentsEmptyTableKeepsDefaults(t *testing.T) {
	db := newTestDB(t)

	r := NewRecognizer()
	require.NoError(t, r.LoadIntents(db))

	names := r.IntentNames()
	assert.Contains(t, names, "greeting")
	assert.Contains(t, names, "default")

	intent, _, _ := r.Recognize("hello")
	assert.Equal(t, "greeting", intent)
}

func TestLoadIntentsQueryFailureRestoresDefaults(t *testing.T) {
	db := newTestDB(t)

	// Load a custom set first, then break the table; reload must fall back
	require.NoError(t, db.Create(&models.Intent{
		IntentName: "only", Patterns: `["\\b(ping)\\b"]`, Responses: `["pong"]`, Priority: 5, IsActive: true,
	}).Error)

	r := NewRecognizer()
	require.NoError(t, r.LoadIntents(db))
	assert.Equal(t, []string{"only"}, r.IntentNames())

	require.NoError(t, db.Migrator().DropTable(&models.Intent{}))
	assert.Error(t, r.LoadIntents(db))

	names := r.IntentNames()
	assert.Contains(t, names, "greeting")
	assert.Contains(t, names, "default")
}

func TestReloadSwapsIntentSet(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db)

	require.NoError(t, db.Create(&models.Intent{
		IntentName: "cafeteria", Patterns: `["\\b(cafeteria|canteen|mess)\\b"]`,
		Responses: `["The cafeteria is open 8am to 6pm."]`, Priority: 9, IsActive: true,
	}).Error)
	require.NoError(t, engine.ReloadIntents())

	result := engine.ProcessMessage("is the canteen open", 0, "", ClientMeta{})
	assert.Equal(t, "cafeteria", result.Intent)
	assert.Equal(t, "The cafeteria is open 8am to 6pm.", result.Response)
}

func TestResponseTemplateUnknownIntent(t *testing.T) {
	r := NewRecognizer()
	pick := func(n int) int { return 0 }

	assert.Equal(t, "I'm not sure how to help with that.", r.ResponseTemplate("nonexistent", pick))
	assert.Equal(t, "Hello! How can I help you today?", r.ResponseTemplate("greeting", pick))
}

func TestHandlerName(t *testing.T) {
	r := NewRecognizer()

	assert.Equal(t, "handle_quiz", r.HandlerName("quiz"))
	assert.Equal(t, "handle_default", r.HandlerName("default"))
	assert.Equal(t, "", r.HandlerName("nonexistent"))
}
