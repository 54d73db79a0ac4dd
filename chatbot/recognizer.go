package chatbot

import (
	"edubot/models"
	"encoding/json"
	"errors"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// intentDef is one loaded intent with its patterns compiled.
// Patterns keep declaration order; the source text is kept for reporting
// which pattern matched.
type intentDef struct {
	Name       string
	Priority   int
	Patterns   []*regexp.Regexp
	PatternSrc []string
	Responses  []string
	Handler    string
}

// Recognizer classifies messages by priority-ordered first-match over
// per-intent regex pattern lists. The intent set is replaced atomically on
// reload.
type Recognizer struct {
	mu      sync.RWMutex
	intents []intentDef // sorted by priority descending
}

// NewRecognizer returns a recognizer preloaded with the hardcoded default
// intent set.
func NewRecognizer() *Recognizer {
	r := &Recognizer{}
	r.loadDefaultIntents()
	return r
}

// LoadIntents replaces the intent set from persisted configuration. Rows with
// malformed JSON or patterns are logged and skipped; if the query itself
// fails, the hardcoded defaults are restored instead.
func (r *Recognizer) LoadIntents(db *gorm.DB) error {
	var rows []models.Intent
	if err := db.Where("is_active = ?", true).Order("priority desc").Find(&rows).Error; err != nil {
		log.Printf("Error loading intents: %v", err)
		r.loadDefaultIntents()
		return err
	}

	var intents []intentDef
	for _, row := range rows {
		var patterns, responses []string
		if err := json.Unmarshal([]byte(row.Patterns), &patterns); err != nil {
			log.Printf("Error parsing intent %s: invalid patterns JSON", row.IntentName)
			continue
		}
		if err := json.Unmarshal([]byte(row.Responses), &responses); err != nil {
			log.Printf("Error parsing intent %s: invalid responses JSON", row.IntentName)
			continue
		}

		def, err := compileIntent(row.IntentName, row.Priority, patterns, responses, row.HandlerFunction)
		if err != nil {
			log.Printf("Error compiling intent %s: %v", row.IntentName, err)
			continue
		}
		intents = append(intents, def)
	}

	if len(intents) == 0 {
		r.loadDefaultIntents()
		return nil
	}

	sortByPriority(intents)

	r.mu.Lock()
	r.intents = intents
	r.mu.Unlock()
	return nil
}

// compileIntent compiles the pattern list for one intent. A single invalid
// pattern is skipped; an intent with no usable patterns is an error.
func compileIntent(name string, priority int, patterns, responses []string, handler string) (intentDef, error) {
	def := intentDef{
		Name:      name,
		Priority:  priority,
		Responses: responses,
		Handler:   handler,
	}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			log.Printf("Skipping invalid pattern %q for intent %s: %v", p, name, err)
			continue
		}
		def.Patterns = append(def.Patterns, re)
		def.PatternSrc = append(def.PatternSrc, p)
	}
	if len(def.Patterns) == 0 {
		return def, errNoPatterns
	}
	return def, nil
}

var errNoPatterns = errors.New("intent has no valid patterns")

func sortByPriority(intents []intentDef) {
	sort.SliceStable(intents, func(i, j int) bool {
		return intents[i].Priority > intents[j].Priority
	})
}

// Recognize returns the intent for a message along with a confidence score
// and the pattern that matched. Evaluation is priority-ordered first-match;
// the default catch-all guarantees there is always a result.
func (r *Recognizer) Recognize(message string) (string, float64, string) {
	message = strings.ToLower(strings.TrimSpace(message))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, intent := range r.intents {
		for i, re := range intent.Patterns {
			if re.MatchString(message) {
				// The catch-all always reports low confidence
				if intent.Name == "default" {
					return intent.Name, 0.3, intent.PatternSrc[i]
				}
				return intent.Name, calculateConfidence(message, re), intent.PatternSrc[i]
			}
		}
	}

	return "default", 0.3, ".*"
}

// calculateConfidence scores a successful pattern match. Base 0.7, boosted
// when the matched text reproduces verbatim in the message and when the match
// spans more than 30% of it, capped at 0.95.
func calculateConfidence(message string, re *regexp.Regexp) float64 {
	match := re.FindString(message)
	if match == "" {
		return 0.1
	}

	confidence := 0.7

	if strings.Contains(strings.ToLower(message), strings.ToLower(match)) {
		confidence += 0.2
	}

	if float64(len(match)) > float64(len(message))*0.3 {
		confidence += 0.1
	}

	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

// ResponseTemplate picks one canned response template for the intent
func (r *Recognizer) ResponseTemplate(intentName string, pick Selector) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, intent := range r.intents {
		if intent.Name == intentName && len(intent.Responses) > 0 {
			return intent.Responses[pick(len(intent.Responses))]
		}
	}
	return "I'm not sure how to help with that."
}

// HandlerName returns the handler identifier for the intent, if any
func (r *Recognizer) HandlerName(intentName string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, intent := range r.intents {
		if intent.Name == intentName {
			return intent.Handler
		}
	}
	return ""
}

// IntentNames returns the loaded intent names in evaluation order
func (r *Recognizer) IntentNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.intents))
	for _, intent := range r.intents {
		names = append(names, intent.Name)
	}
	return names
}

func (r *Recognizer) loadDefaultIntents() {
	var intents []intentDef
	for _, d := range defaultIntents() {
		def, err := compileIntent(d.name, d.priority, d.patterns, d.responses, d.handler)
		if err != nil {
			// default patterns are constants; this never fires in practice
			log.Printf("Error compiling default intent %s: %v", d.name, err)
			continue
		}
		intents = append(intents, def)
	}
	sortByPriority(intents)

	r.mu.Lock()
	r.intents = intents
	r.mu.Unlock()
}

type defaultIntent struct {
	name      string
	priority  int
	patterns  []string
	responses []string
	handler   string
}

// defaultIntents is the hardcoded fallback set used when nothing can be
// loaded from the database.
func defaultIntents() []defaultIntent {
	return []defaultIntent{
		{
			name:     "greeting",
			priority: 10,
			patterns: []string{`\b(hello|hi|hey|greetings|good morning|good afternoon|good evening)\b`},
			responses: []string{
				"Hello! How can I help you today?",
				"Hi there! What would you like to know?",
				"Hey! I'm here to assist you.",
				"Greetings! How may I assist you?",
			},
			handler: "handle_greeting",
		},
		{
			name:     "faculty_info",
			priority: 8,
			patterns: []string{
				`\b(faculty|teacher|professor|instructor|staff|who teaches)\b`,
				`\b(faculty details|faculty information|about faculty)\b`,
				`\b(find faculty|search faculty)\b`,
				`\b(computer science|computer|cs|it|information technology)\b`,
				`\b(mathematics|math|maths|physics|chemistry|biology)\b`,
				`\b(english|literature|history|economics|business)\b`,
				`\b(engineering|mechanical|electrical|civil)\b`,
				`\b(department|dept)\b`,
			},
			responses: []string{
				"I can help you find faculty information. Which faculty member are you looking for?",
				"Let me help you with faculty details. Please specify the faculty name or department.",
			},
			handler: "handle_faculty",
		},
		{
			name:     "attendance",
			priority: 8,
			patterns: []string{
				`\b(attendance|present|absent|attendance record|my attendance)\b`,
				`\b(attendance percentage|how many classes)\b`,
				`\b(check attendance|attendance status)\b`,
			},
			responses: []string{
				"Let me check your attendance records.",
				"I'll fetch your attendance information.",
			},
			handler: "handle_attendance",
		},
		{
			name:     "events",
			priority: 7,
			patterns: []string{
				`\b(events|holiday|holidays|upcoming events|college events)\b`,
				`\b(festival|celebration|calendar|schedule)\b`,
				`\b(what events|any events|show events)\b`,
			},
			responses: []string{
				"Here are the upcoming events and holidays.",
				"Let me show you the college calendar.",
			},
			handler: "handle_events",
		},
		{
			name:     "courses",
			priority: 7,
			patterns: []string{
				`\b(courses|subjects|course details|curriculum)\b`,
				`\b(syllabus|course content|what courses)\b`,
				`\b(my courses|enrolled courses)\b`,
			},
			responses: []string{
				"Let me help you with course information.",
				"I can provide details about courses and curriculum.",
			},
			handler: "handle_courses",
		},
		{
			name:     "quiz",
			priority: 6,
			patterns: []string{
				`\b(quiz|question|test|challenge|brain teaser)\b`,
				`\b(quiz me|ask me|test my knowledge)\b`,
				`\b(trivia|game|puzzle)\b`,
				`^[ABCD]$`, // single letter quiz answers
				`^[abcd]$`,
			},
			responses: []string{
				"Let me give you a quiz question!",
				"Time for a brain teaser!",
			},
			handler: "handle_quiz",
		},
		{
			name:     "notes",
			priority: 6,
			patterns: []string{
				`\b(notes|study material|lecture notes|notes download)\b`,
				`\b(study resources|materials|downloads)\b`,
			},
			responses: []string{
				"I can help you find study notes and materials.",
				"Let me show you available study resources.",
			},
			handler: "handle_notes",
		},
		{
			name:     "help",
			priority: 6,
			patterns: []string{
				`\b(help|what can you do|commands|features|assist)\b`,
				`\b(how to use|instructions|guide)\b`,
			},
			responses: []string{
				"I can help you with faculty info, attendance, events, quizzes, and much more!",
				"Here's what I can do for you: Check faculty details, view attendance, see upcoming events, take quizzes, and answer general questions.",
			},
			handler: "handle_help",
		},
		{
			name:     "thanks",
			priority: 5,
			patterns: []string{`\b(thanks|thank you|thankyou|appreciate|grateful)\b`},
			responses: []string{
				"You're welcome! Happy to help!",
				"Glad I could assist you!",
				"Anytime! Feel free to ask if you need anything else.",
			},
			handler: "handle_thanks",
		},
		{
			name:     "bye",
			priority: 5,
			patterns: []string{`\b(bye|goodbye|see you|farewell|exit|quit)\b`},
			responses: []string{
				"Goodbye! Have a great day!",
				"See you later! Take care!",
				"Farewell! Don't hesitate to come back if you need help.",
			},
			handler: "handle_goodbye",
		},
		{
			name:     "default",
			priority: 1,
			patterns: []string{`.*`},
			responses: []string{
				"I'm sorry, I didn't understand that. Could you please rephrase?",
				"I'm not sure how to help with that. Try asking about faculty, attendance, events, or courses.",
				"Could you please be more specific? I can help with faculty info, attendance, events, and more!",
			},
			handler: "handle_default",
		},
	}
}
