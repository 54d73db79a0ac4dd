package chatbot

import (
	"edubot/models"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

// quizAnswerLetters are the only accepted answer inputs
func isQuizAnswerLetter(s string) bool {
	switch s {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

// findActiveQuizSession returns the most recently created active session with
// no recorded answer for the user, or nil.
func (e *Engine) findActiveQuizSession(userID uint) *models.QuizSession {
	if userID == 0 {
		return nil
	}

	var session models.QuizSession
	err := e.db.Where("user_id = ? AND is_active = ? AND user_answer IS NULL", userID, true).
		Order("created_at desc").
		First(&session).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("Error looking up active quiz session: %v", err)
		}
		return nil
	}
	return &session
}

// startNewQuiz picks a random active quiz question, optionally filtered by
// subject category and difficulty keywords in the message, and opens a new
// session for authenticated users. Any previous unanswered session is
// deactivated first so at most one stays pending.
func (e *Engine) startNewQuiz(message string, uc *UserContext, sessionID string) string {
	messageLower := strings.ToLower(message)

	category := detectQuizCategory(messageLower)
	difficulty := detectQuizDifficulty(messageLower)

	query := e.db.Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var quizzes []models.Quiz
	if err := query.Find(&quizzes).Error; err != nil {
		log.Printf("Error loading quiz questions: %v", err)
		return "🧠 I'm having trouble loading a quiz question right now. Please try again! 🤔"
	}

	if len(quizzes) == 0 {
		return "🧠 I don't have any quiz questions available right now. Check back later for brain teasers! 🤔"
	}

	quiz := quizzes[e.pick(len(quizzes))]

	if uc != nil && uc.IsAuthenticated {
		err := e.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.QuizSession{}).
				Where("user_id = ? AND is_active = ?", uc.UserID, true).
				Update("is_active", false).Error; err != nil {
				return err
			}

			session := models.QuizSession{
				UserID:    uc.UserID,
				QuizID:    quiz.ID,
				SessionID: sessionID,
				IsActive:  true,
			}
			return tx.Create(&session).Error
		})
		if err != nil {
			log.Printf("Error creating quiz session: %v", err)
			return "🧠 I'm having trouble loading a quiz question right now. Please try again! 🤔"
		}
	}

	// Present the question without the answer or explanation
	var sb strings.Builder
	sb.WriteString("🧠 **Quiz Time!** 🎯\n\n")
	sb.WriteString(fmt.Sprintf("**Subject:** %s\n", strings.Title(quiz.Subject)))
	sb.WriteString(fmt.Sprintf("**Difficulty:** %s\n", strings.Title(quiz.Difficulty)))
	sb.WriteString(fmt.Sprintf("**Points:** %d\n\n", quiz.Points))
	sb.WriteString(fmt.Sprintf("**Question:** %s\n\n", quiz.Question))

	var options []string
	if quiz.OptionA != "" {
		options = append(options, "A) "+quiz.OptionA)
	}
	if quiz.OptionB != "" {
		options = append(options, "B) "+quiz.OptionB)
	}
	if quiz.OptionC != "" {
		options = append(options, "C) "+quiz.OptionC)
	}
	if quiz.OptionD != "" {
		options = append(options, "D) "+quiz.OptionD)
	}
	sb.WriteString(strings.Join(options, "\n"))
	sb.WriteString("\n\n🤔 Think you know the answer? Reply with A, B, C, or D!")

	return sb.String()
}

// gradeQuizAnswer records the answer on the session, deactivates it and
// builds the feedback message. A session transitions to answered exactly
// once.
func (e *Engine) gradeQuizAnswer(session *models.QuizSession, userAnswer string) string {
	var quiz models.Quiz
	if err := e.db.First(&quiz, session.QuizID).Error; err != nil {
		log.Printf("Error loading quiz %d for grading: %v", session.QuizID, err)
		return "🤔 Something went wrong processing your answer. Please try again!"
	}

	isCorrect := quiz.CheckAnswer(userAnswer)
	now := time.Now()

	session.UserAnswer = &userAnswer
	session.IsCorrect = &isCorrect
	if isCorrect {
		session.PointsEarned = quiz.Points
	} else {
		session.PointsEarned = 0
	}
	session.AnsweredAt = &now
	session.IsActive = false

	if err := e.db.Save(session).Error; err != nil {
		log.Printf("Error saving graded quiz session: %v", err)
		return "🤔 Something went wrong processing your answer. Please try again!"
	}

	var sb strings.Builder
	if isCorrect {
		sb.WriteString("🎉 **Correct!** Well done! 🌟\n\n")
		sb.WriteString(fmt.Sprintf("✅ Your answer: **%s**\n", userAnswer))
		sb.WriteString(fmt.Sprintf("🏆 You earned **%d points**!\n\n", quiz.Points))
	} else {
		sb.WriteString("❌ **Incorrect!** Don't worry, keep learning! 📚\n\n")
		sb.WriteString(fmt.Sprintf("❌ Your answer: **%s**\n", userAnswer))
		sb.WriteString(fmt.Sprintf("✅ Correct answer: **%s**\n\n", quiz.CorrectAnswer))
	}

	if quiz.Explanation != "" {
		sb.WriteString(fmt.Sprintf("📚 **Explanation:** %s\n\n", quiz.Explanation))
	}

	sb.WriteString("🧠 Want to try another quiz? Just ask me for another question!")
	return sb.String()
}

func detectQuizCategory(messageLower string) string {
	switch {
	case strings.Contains(messageLower, "computer") || strings.Contains(messageLower, "programming"):
		return "computer_science"
	case strings.Contains(messageLower, "math"):
		return "mathematics"
	case strings.Contains(messageLower, "science"):
		return "science"
	case strings.Contains(messageLower, "history"):
		return "history"
	case strings.Contains(messageLower, "literature"):
		return "literature"
	}
	return ""
}

func detectQuizDifficulty(messageLower string) string {
	switch {
	case strings.Contains(messageLower, "easy"):
		return "easy"
	case strings.Contains(messageLower, "hard") || strings.Contains(messageLower, "difficult"):
		return "hard"
	case strings.Contains(messageLower, "medium"):
		return "medium"
	}
	return ""
}
