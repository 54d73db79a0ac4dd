package chatbot

import (
	"edubot/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedQuiz(t *testing.T, db *gorm.DB, question, correct, category string, points int) models.Quiz {
	t.Helper()
	quiz := models.Quiz{
		Question:      question,
		OptionA:       "Option one",
		OptionB:       "Option two",
		OptionC:       "Option three",
		OptionD:       "Option four",
		CorrectAnswer: correct,
		Explanation:   "Because that is the right answer.",
		Subject:       "general",
		Difficulty:    "easy",
		Category:      category,
		Points:        points,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&quiz).Error)
	return quiz
}

func pendingSessionCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.QuizSession{}).
		Where("user_id = ? AND is_active = ? AND user_answer IS NULL", userID, true).
		Count(&count).Error)
	return count
}

func TestStartQuizCreatesSession(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "Sam", "Lee", "STUDENT")
	seedQuiz(t, db, "What is 2+2?", "B", "mathematics", 5)
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("quiz me", user.ID, "sess-q", ClientMeta{})
	assert.True(t, result.Success)
	assert.Equal(t, "quiz", result.Intent)
	assert.Contains(t, result.Response, "Quiz Time!")
	assert.Contains(t, result.Response, "What is 2+2?")
	assert.NotContains(t, result.Response, "Because that is the right answer.")

	assert.Equal(t, int64(1), pendingSessionCount(t, db, user.ID))

	var session models.QuizSession
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&session).Error)
	assert.Equal(t, "sess-q", session.SessionID)
	assert.Nil(t, session.UserAnswer)
}

func TestStartQuizTwiceKeepsSinglePendingSession(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "Sam", "Lee", "STUDENT")
	seedQuiz(t, db, "What is 2+2?", "B", "mathematics", 5)
	engine := newTestEngine(t, db)

	engine.ProcessMessage("quiz me", user.ID, "sess-q", ClientMeta{})
	engine.ProcessMessage("give me another quiz", user.ID, "sess-q", ClientMeta{})

	assert.Equal(t, int64(1), pendingSessionCount(t, db, user.ID))
}

func TestCorrectAnswerGradedAndDeactivated(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "Sam", "Lee", "STUDENT")
	seedQuiz(t, db, "What is 2+2?", "B", "mathematics", 5)
	engine := newTestEngine(t, db)

	engine.ProcessMessage("quiz me", user.ID, "sess-q", ClientMeta{})
	result := engine.ProcessMessage("b", user.ID, "sess-q", ClientMeta{})

	assert.Equal(t, "quiz", result.Intent)
	assert.Equal(t, 0.98, result.Confidence)
	assert.Equal(t, "quiz_answer", result.MatchedPattern)
	assert.Contains(t, result.Response, "Correct!")
	assert.Contains(t, result.Response, "5 points")
	assert.Contains(t, result.Response, "Because that is the right answer.")

	var session models.QuizSession
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&session).Error)
	assert.False(t, session.IsActive)
	require.NotNil(t, session.UserAnswer)
	assert.Equal(t, "B", *session.UserAnswer)
	require.NotNil(t, session.IsCorrect)
	assert.True(t, *session.IsCorrect)
	assert.Equal(t, 5, session.PointsEarned)
	assert.NotNil(t, session.AnsweredAt)
	assert.Equal(t, int64(0), pendingSessionCount(t, db, user.ID))
}

func TestWrongAnswerRevealsCorrectOption(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "Sam", "Lee", "STUDENT")
	seedQuiz(t, db, "What is 2+2?", "B", "mathematics", 5)
	engine := newTestEngine(t, db)

	engine.ProcessMessage("quiz me", user.ID, "sess-q", ClientMeta{})
	result := engine.ProcessMessage("C", user.ID, "sess-q", ClientMeta{})

	assert.Contains(t, result.Response, "Incorrect!")
	assert.Contains(t, result.Response, "Correct answer: **B**")

	var session models.QuizSession
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&session).Error)
	require.NotNil(t, session.IsCorrect)
	assert.False(t, *session.IsCorrect)
	assert.Equal(t, 0, session.PointsEarned)
}

func TestBareLetterWithoutSessionStartsNewQuiz(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "Sam", "Lee", "STUDENT")
	seedQuiz(t, db, "What is 2+2?", "B", "mathematics", 5)
	engine := newTestEngine(t, db)

	// No pending session: a bare letter falls through to the quiz intent and
	// opens a fresh question instead of grading.
	result := engine.ProcessMessage("A", user.ID, "sess-q", ClientMeta{})
	assert.Equal(t, "quiz", result.Intent)
	assert.Contains(t, result.Response, "Quiz Time!")
	assert.Equal(t, int64(1), pendingSessionCount(t, db, user.ID))
}

func TestAnswerAfterGradingStartsNewQuiz(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "Sam", "Lee", "STUDENT")
	seedQuiz(t, db, "What is 2+2?", "B", "mathematics", 5)
	engine := newTestEngine(t, db)

	engine.ProcessMessage("quiz me", user.ID, "sess-q", ClientMeta{})
	engine.ProcessMessage("B", user.ID, "sess-q", ClientMeta{})

	// Session already answered, so the letter is not graded twice
	result := engine.ProcessMessage("B", user.ID, "sess-q", ClientMeta{})
	assert.Contains(t, result.Response, "Quiz Time!")

	var count int64
	require.NoError(t, db.Model(&models.QuizSession{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestQuizCategoryAndDifficultyFilters(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "Sam", "Lee", "STUDENT")
	seedQuiz(t, db, "What is 2+2?", "B", "mathematics", 5)
	progEasy := seedQuiz(t, db, "Which symbol starts a comment?", "A", "computer_science", 5)
	progHard := models.Quiz{
		Question:      "Which sorting algorithm is stable?",
		OptionA:       "Quicksort",
		OptionB:       "Mergesort",
		CorrectAnswer: "B",
		Subject:       "algorithms",
		Difficulty:    "hard",
		Category:      "computer_science",
		Points:        10,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&progHard).Error)
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("easy programming quiz", user.ID, "sess-q", ClientMeta{})
	assert.Contains(t, result.Response, progEasy.Question)

	result = engine.ProcessMessage("hard programming quiz", user.ID, "sess-q", ClientMeta{})
	assert.Contains(t, result.Response, progHard.Question)
}

func TestQuizWithoutQuestions(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "Sam", "Lee", "STUDENT")
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("quiz me", user.ID, "sess-q", ClientMeta{})
	assert.Contains(t, result.Response, "don't have any quiz questions")
	assert.Equal(t, int64(0), pendingSessionCount(t, db, user.ID))
}

func TestAnonymousQuizGetsQuestionWithoutSession(t *testing.T) {
	db := newTestDB(t)
	seedQuiz(t, db, "What is 2+2?", "B", "mathematics", 5)
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("quiz me", 0, "", ClientMeta{})
	assert.Contains(t, result.Response, "Quiz Time!")

	var count int64
	require.NoError(t, db.Model(&models.QuizSession{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestExpireAbandonedQuizSessions(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "Sam", "Lee", "STUDENT")
	seedQuiz(t, db, "What is 2+2?", "B", "mathematics", 5)
	engine := newTestEngine(t, db)

	engine.ProcessMessage("quiz me", user.ID, "sess-q", ClientMeta{})
	require.Equal(t, int64(1), pendingSessionCount(t, db, user.ID))

	// Negative max age puts the cutoff in the future, expiring everything
	expired, err := engine.ExpireAbandonedQuizSessions(-1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)
	assert.Equal(t, int64(0), pendingSessionCount(t, db, user.ID))

	// A graded answer now starts fresh instead of touching the expired session
	result := engine.ProcessMessage("B", user.ID, "sess-q", ClientMeta{})
	assert.Contains(t, result.Response, "Quiz Time!")
}
