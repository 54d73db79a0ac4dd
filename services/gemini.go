package services

import (
	"edubot/chatbot"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// quotaApology is returned verbatim when the API reports quota exhaustion
const quotaApology = "I'd love to help with that question, but I've reached my daily limit for AI responses. Please try again tomorrow, or ask about college-specific topics like faculty, courses, events, or attendance that I can answer from our database!"

const maxResponseLength = 800

// geminiSystemPrompt is the persona and guardrail preamble for every request
const geminiSystemPrompt = `You are EduBot, an intelligent college chatbot assistant. You help students with educational queries.

IMPORTANT: You are being used as a fallback when the college's internal database doesn't have the answer.

Your role:
- Provide general educational guidance and study tips
- Answer academic questions (math, science, literature, etc.)
- Give career advice and course selection help
- Explain concepts and provide learning resources
- Offer motivational support for students
- Help with assignment and project ideas

Guidelines:
- Be helpful, encouraging, and educational
- Keep responses concise (under 200 words)
- If asked about specific college details (faculty, events, schedules), politely say you don't have access to that institutional data
- Focus on being a learning companion and study assistant
- Always maintain a supportive, academic tone`

// GeminiService generates fallback answers through the Gemini REST API. A
// service built without an API key stays disabled and reports unavailable.
type GeminiService struct {
	client      *resty.Client
	baseURL     string
	apiKey      string
	model       string
	maxRetries  int
	retryDelay  time.Duration
	initialized bool
}

// NewGeminiService builds the fallback adapter. timeout bounds each request
// so a hung external call cannot stall the dispatcher.
func NewGeminiService(apiKey, model string, timeout time.Duration) *GeminiService {
	s := &GeminiService{
		baseURL:    geminiBaseURL,
		apiKey:     apiKey,
		model:      model,
		maxRetries: 3,
		retryDelay: time.Second,
	}
	if apiKey == "" || apiKey == "your-gemini-api-key-here" {
		log.Println("Warning: Gemini API key not configured. Gemini features will be disabled.")
		return s
	}

	s.client = resty.New().SetTimeout(timeout)
	s.initialized = true
	return s
}

// Available reports whether the service was successfully initialized
func (s *GeminiService) Available() bool {
	return s.initialized
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate asks Gemini for an answer, retrying transient failures with
// linear backoff. Quota exhaustion short-circuits to a fixed apology; total
// failure returns empty so the dispatcher keeps its own response.
func (s *GeminiService) Generate(userMessage string, uc *chatbot.UserContext) string {
	if !s.initialized {
		return ""
	}

	prompt := s.buildPrompt(userMessage, uc)
	url := fmt.Sprintf("%s/%s:generateContent", s.baseURL, s.model)

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		var out geminiResponse
		resp, err := s.client.R().
			SetQueryParam("key", s.apiKey).
			SetHeader("Content-Type", "application/json").
			SetBody(reqBody).
			SetResult(&out).
			SetError(&out).
			Post(url)

		if err != nil {
			log.Printf("Gemini API call failed (attempt %d): %v", attempt, err)
		} else if resp.StatusCode() == 429 {
			log.Printf("Gemini API quota exceeded: %s", resp.String())
			return quotaApology
		} else if resp.IsError() {
			log.Printf("Gemini API call failed (attempt %d): status %d", attempt, resp.StatusCode())
		} else if text := firstCandidateText(&out); text != "" {
			return cleanResponse(text)
		} else {
			log.Printf("Empty response from Gemini (attempt %d)", attempt)
		}

		if attempt < s.maxRetries {
			time.Sleep(s.retryDelay * time.Duration(attempt))
		}
	}

	log.Println("All Gemini API attempts failed")
	return ""
}

func firstCandidateText(out *geminiResponse) string {
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return out.Candidates[0].Content.Parts[0].Text
}

// buildPrompt embeds the persona preamble, the caller's name/role, up to the
// last 2 history turns, and the current question.
func (s *GeminiService) buildPrompt(userMessage string, uc *chatbot.UserContext) string {
	var context strings.Builder
	if uc != nil {
		if uc.IsAuthenticated {
			name := uc.FirstName
			if name == "" {
				name = "Student"
			}
			role := uc.Role
			if role == "" {
				role = "student"
			}
			context.WriteString(fmt.Sprintf("User: %s\n", name))
			context.WriteString(fmt.Sprintf("Role: %s\n", role))
		}

		if len(uc.History) > 0 {
			context.WriteString("Recent conversation:\n")
			history := uc.History
			if len(history) > 2 {
				history = history[:2]
			}
			for _, turn := range history {
				context.WriteString(fmt.Sprintf("User: %s\n", turn.UserMessage))
				context.WriteString(fmt.Sprintf("Bot: %s\n", turn.BotResponse))
			}
		}
	}

	return fmt.Sprintf("%s\n\n%s\n\nCurrent Question: %s\n\nPlease provide a helpful response:",
		geminiSystemPrompt, context.String(), userMessage)
}

// cleanResponse collapses whitespace runs and truncates to the chat limit.
// The limit counts characters, not bytes, so multi-byte text is never split
// mid-rune.
func cleanResponse(response string) string {
	cleaned := strings.Join(strings.Fields(response), " ")
	if utf8.RuneCountInString(cleaned) > maxResponseLength {
		runes := []rune(cleaned)
		cleaned = string(runes[:maxResponseLength]) + "..."
	}
	return cleaned
}
