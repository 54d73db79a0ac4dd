package chatbot

import (
	"edubot/models"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

// aiAttributionPrefix marks responses produced by the AI fallback
const aiAttributionPrefix = "This answer is provided by AI: "

// protectedIntents always answer from internal data and are never overridden
// by the AI fallback, regardless of confidence.
var protectedIntents = map[string]bool{
	"faculty_info": true,
	"attendance":   true,
	"events":       true,
	"courses":      true,
	"quiz":         true,
	"notes":        true,
	"greeting":     true,
	"thanks":       true,
	"bye":          true,
	"help":         true,
	"quick_action": true,
}

// Generator is the external generative fallback. Generate returns an empty
// string when no answer is available; the engine then keeps its own response.
type Generator interface {
	Available() bool
	Generate(message string, uc *UserContext) string
}

// Selector picks an index in [0,n). Injected so tests can pin random choices.
type Selector func(n int) int

// UserContext describes the caller for one processed message
type UserContext struct {
	IsAuthenticated bool
	UserID          uint
	FirstName       string
	FullName        string
	Role            string
	SessionID       string
	History         []HistoryTurn
}

// HistoryTurn is one prior exchange pulled from the conversation log
type HistoryTurn struct {
	UserMessage string
	BotResponse string
	Intent      string
}

// ClientMeta is transport metadata recorded with each log entry
type ClientMeta struct {
	IpAddress string
	UserAgent string
}

// Result is the outcome of processing one message
type Result struct {
	Response       string  `json:"response"`
	Intent         string  `json:"intent"`
	Confidence     float64 `json:"confidence"`
	ResponseTimeMs int64   `json:"response_time_ms"`
	MatchedPattern string  `json:"matched_pattern"`
	Success        bool    `json:"success"`
}

// Engine orchestrates the short-circuit decision chain: pending quiz answer,
// curated Q&A, intent classification, handler invocation, AI fallback.
type Engine struct {
	db         *gorm.DB
	recognizer *Recognizer
	contexts   *ContextStore
	generator  Generator
	pick       Selector
	now        func() time.Time

	lockMu    sync.Mutex
	userLocks map[uint]*userLock
}

// userLock is a per-user mutex with a holder count so entries can be removed
// once the last message for the user finishes.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// Option tweaks engine construction
type Option func(*Engine)

// WithSelector replaces the uniform-random selection policy
func WithSelector(pick Selector) Option {
	return func(e *Engine) { e.pick = pick }
}

// WithClock replaces the engine clock
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithGenerator sets the AI fallback generator. A nil generator disables the
// fallback without disabling the engine.
func WithGenerator(g Generator) Option {
	return func(e *Engine) { e.generator = g }
}

// NewEngine builds an engine over the given database. Intents start from the
// hardcoded defaults; call LoadIntents to pick up persisted configuration.
func NewEngine(db *gorm.DB, opts ...Option) *Engine {
	e := &Engine{
		db:         db,
		recognizer: NewRecognizer(),
		contexts:   NewContextStore(),
		pick:       rand.Intn,
		now:        time.Now,
		userLocks:  make(map[uint]*userLock),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.contexts.now = e.now
	return e
}

// LoadIntents loads the persisted intent configuration
func (e *Engine) LoadIntents() error {
	return e.recognizer.LoadIntents(e.db)
}

// ReloadIntents atomically replaces the in-memory intent set from persisted
// configuration (admin surface).
func (e *Engine) ReloadIntents() error {
	return e.recognizer.LoadIntents(e.db)
}

// Recognizer exposes the classifier for administrative inspection
func (e *Engine) Recognizer() *Recognizer {
	return e.recognizer
}

// Contexts exposes the conversation context store for maintenance jobs
func (e *Engine) Contexts() *ContextStore {
	return e.contexts
}

// lockUser serializes processing per user so the single-pending-quiz
// invariant holds under concurrent messages from the same caller. Distinct
// users proceed in parallel; an entry lives only while messages for that
// user are in flight.
func (e *Engine) lockUser(userID uint) func() {
	e.lockMu.Lock()
	l, ok := e.userLocks[userID]
	if !ok {
		l = &userLock{}
		e.userLocks[userID] = l
	}
	l.refs++
	e.lockMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		e.lockMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.userLocks, userID)
		}
		e.lockMu.Unlock()
	}
}

// ProcessMessage runs the decision chain for one inbound message. It never
// returns an error and never panics outward; failures degrade to an error
// result with Success=false.
func (e *Engine) ProcessMessage(userMessage string, userID uint, sessionID string, meta ClientMeta) (result Result) {
	start := e.now()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Chatbot engine error: %v", r)
			result = errorResult("I'm experiencing some technical difficulties. Please try again.")
		}
	}()

	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return errorResult("Please enter a message.")
	}

	if userID != 0 {
		unlock := e.lockUser(userID)
		defer unlock()
	}

	// FIRST: a bare letter with a pending quiz session is graded immediately
	if quizResponse := e.checkQuizAnswer(userMessage, userID); quizResponse != "" {
		result = Result{
			Response:       quizResponse,
			Intent:         "quiz",
			Confidence:     0.98,
			ResponseTimeMs: e.elapsedMs(start),
			MatchedPattern: "quiz_answer",
			Success:        true,
		}
		e.logConversation(userID, sessionID, userMessage, result, meta)
		return result
	}

	// SECOND: curated Q&A before any classification
	if qaResponse := e.checkQuickActions(userMessage); qaResponse != "" {
		result = Result{
			Response:       qaResponse,
			Intent:         "quick_action",
			Confidence:     0.95,
			ResponseTimeMs: e.elapsedMs(start),
			MatchedPattern: "quick_action",
			Success:        true,
		}
		e.logConversation(userID, sessionID, userMessage, result, meta)
		return result
	}

	intentName, confidence, matchedPattern := e.recognizer.Recognize(userMessage)
	templateResponse := e.recognizer.ResponseTemplate(intentName, e.pick)

	uc := e.userContext(userID, sessionID)

	finalResponse := templateResponse
	if handlerName := e.recognizer.HandlerName(intentName); handlerName != "" {
		if handler, ok := handlerTable[handlerName]; ok {
			finalResponse = handler(e, userMessage, templateResponse, uc)
		}
	}

	// The AI fallback only ever fires for low-confidence catch-all results,
	// and never for protected intents or faculty-related queries.
	shouldUseFallback := false
	if !protectedIntents[intentName] && !e.isFacultyRelated(userMessage) {
		shouldUseFallback = intentName == "default" && confidence < 0.7
	}

	if shouldUseFallback {
		if aiResponse := e.tryGenerator(userMessage, uc); aiResponse != "" {
			finalResponse = aiAttributionPrefix + aiResponse
			intentName = "gemini_ai"
			confidence = 0.85
		}
	}

	result = Result{
		Response:       finalResponse,
		Intent:         intentName,
		Confidence:     confidence,
		ResponseTimeMs: e.elapsedMs(start),
		MatchedPattern: matchedPattern,
		Success:        true,
	}

	e.logConversation(userID, sessionID, userMessage, result, meta)
	e.contexts.Touch(userID, intentName)

	return result
}

func (e *Engine) elapsedMs(start time.Time) int64 {
	return e.now().Sub(start).Milliseconds()
}

// checkQuizAnswer grades the message as a quiz answer when it is a bare
// A/B/C/D and the user has a pending session; otherwise returns empty so the
// chain continues.
func (e *Engine) checkQuizAnswer(userMessage string, userID uint) string {
	messageClean := strings.ToUpper(strings.TrimSpace(userMessage))
	if !isQuizAnswerLetter(messageClean) || userID == 0 {
		return ""
	}

	session := e.findActiveQuizSession(userID)
	if session == nil {
		return ""
	}
	return e.gradeQuizAnswer(session, messageClean)
}

// checkQuickActions returns the best curated Q&A response for the message,
// bumping its usage counter, or empty when nothing matches.
func (e *Engine) checkQuickActions(userMessage string) string {
	matches, err := models.SearchForAnswer(e.db, userMessage, 1)
	if err != nil {
		log.Printf("Error checking quick actions: %v", err)
		return ""
	}
	if len(matches) == 0 {
		return ""
	}

	quickAction := matches[0]
	if err := quickAction.IncrementUsage(e.db); err != nil {
		// Usage tracking must never block the answer
		log.Printf("Error incrementing quick action usage: %v", err)
	}
	return quickAction.Response
}

// userContext assembles the caller's identity and recent history for the
// handlers and the fallback prompt.
func (e *Engine) userContext(userID uint, sessionID string) *UserContext {
	uc := &UserContext{SessionID: sessionID}
	if userID == 0 {
		return uc
	}

	var user models.User
	if err := e.db.First(&user, userID).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("Error loading user %d: %v", userID, err)
		}
		return uc
	}

	uc.IsAuthenticated = true
	uc.UserID = user.ID
	uc.FirstName = user.FirstName
	uc.FullName = user.FullName()
	uc.Role = user.Role

	var logs []models.ChatLog
	if err := e.db.Where("user_id = ?", userID).
		Order("created_at desc").Limit(5).Find(&logs).Error; err != nil {
		log.Printf("Error loading conversation history: %v", err)
		return uc
	}
	for _, l := range logs {
		uc.History = append(uc.History, HistoryTurn{
			UserMessage: l.UserMessage,
			BotResponse: l.BotResponse,
			Intent:      l.Intent,
		})
	}
	return uc
}

func (e *Engine) tryGenerator(userMessage string, uc *UserContext) string {
	if e.generator == nil || !e.generator.Available() {
		return ""
	}
	return e.generator.Generate(userMessage, uc)
}

// logConversation appends a chat log entry. Failures are logged and
// swallowed; the response already computed must reach the caller regardless.
func (e *Engine) logConversation(userID uint, sessionID string, userMessage string, result Result, meta ClientMeta) {
	if userID == 0 {
		return
	}

	if sessionID == "" {
		sessionID = "no-session"
	}
	entry := models.ChatLog{
		UserID:          userID,
		SessionID:       sessionID,
		UserMessage:     userMessage,
		BotResponse:     result.Response,
		Intent:          result.Intent,
		ConfidenceScore: result.Confidence,
		ResponseTimeMs:  result.ResponseTimeMs,
		IpAddress:       meta.IpAddress,
		UserAgent:       meta.UserAgent,
	}

	if err := e.db.Create(&entry).Error; err != nil {
		log.Printf("Error logging conversation: %v", err)
	}
}

func errorResult(message string) Result {
	return Result{
		Response:   message,
		Intent:     "error",
		Confidence: 0.0,
		Success:    false,
	}
}

// ConversationStats summarizes a user's logged conversation
type ConversationStats struct {
	MessageCount     int            `json:"message_count"`
	TopicsDiscussed  int            `json:"topics_discussed"`
	AvgResponseTime  float64        `json:"avg_response_time"`
	MostCommonIntent string         `json:"most_common_intent,omitempty"`
	IntentCounts     map[string]int `json:"intent_distribution,omitempty"`
}

// GetConversationStats aggregates the chat log for one user
func (e *Engine) GetConversationStats(userID uint) (ConversationStats, error) {
	var logs []models.ChatLog
	if err := e.db.Where("user_id = ?", userID).Find(&logs).Error; err != nil {
		return ConversationStats{}, err
	}

	stats := ConversationStats{IntentCounts: make(map[string]int)}
	if len(logs) == 0 {
		return stats, nil
	}

	var totalTime int64
	for _, l := range logs {
		totalTime += l.ResponseTimeMs
		if l.Intent != "" {
			stats.IntentCounts[l.Intent]++
		}
	}

	stats.MessageCount = len(logs)
	stats.TopicsDiscussed = len(stats.IntentCounts)
	stats.AvgResponseTime = float64(totalTime) / float64(len(logs))

	best := 0
	for intent, count := range stats.IntentCounts {
		if count > best {
			best = count
			stats.MostCommonIntent = intent
		}
	}
	return stats, nil
}

// ExpireAbandonedQuizSessions deactivates unanswered sessions older than
// maxAge. Run periodically by the maintenance scheduler.
func (e *Engine) ExpireAbandonedQuizSessions(maxAge time.Duration) (int64, error) {
	cutoff := e.now().Add(-maxAge)
	res := e.db.Model(&models.QuizSession{}).
		Where("is_active = ? AND user_answer IS NULL AND created_at < ?", true, cutoff).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
