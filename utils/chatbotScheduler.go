package utils

import (
	"edubot/chatbot"
	"edubot/config"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[CHATBOT-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// pruneConversationContexts drops in-memory contexts idle beyond the
// configured age. The store is a best-effort cache, so losing entries is
// always safe.
func pruneConversationContexts(engine *chatbot.Engine) {
	maxAge := time.Duration(config.AppConfig.ContextMaxAgeHours) * time.Hour
	removed := engine.Contexts().PruneStale(maxAge)
	if removed > 0 {
		logScheduler(fmt.Sprintf("Pruned %d stale conversation contexts", removed))
	}
}

// expireAbandonedQuizSessions deactivates unanswered quiz sessions the user
// walked away from, so old questions don't swallow future A/B/C/D replies.
func expireAbandonedQuizSessions(engine *chatbot.Engine) {
	maxAge := time.Duration(config.AppConfig.QuizSessionMaxHours) * time.Hour
	expired, err := engine.ExpireAbandonedQuizSessions(maxAge)
	if err != nil {
		logScheduler("Error expiring abandoned quiz sessions: " + err.Error())
		return
	}
	if expired > 0 {
		logScheduler(fmt.Sprintf("Expired %d abandoned quiz sessions", expired))
	}
}

// StartChatbotScheduler starts the periodic maintenance jobs
func StartChatbotScheduler(engine *chatbot.Engine) *cron.Cron {
	c := cron.New()

	// Every 30 minutes: prune idle conversation contexts
	if _, err := c.AddFunc("*/30 * * * *", func() { pruneConversationContexts(engine) }); err != nil {
		log.Printf("Failed to schedule context pruning: %v", err)
	}

	// Hourly: expire abandoned quiz sessions
	if _, err := c.AddFunc("0 * * * *", func() { expireAbandonedQuizSessions(engine) }); err != nil {
		log.Printf("Failed to schedule quiz session expiry: %v", err)
	}

	c.Start()
	logScheduler("Chatbot maintenance scheduler started")
	return c
}
