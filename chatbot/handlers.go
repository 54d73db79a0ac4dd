package chatbot

import (
	"edubot/models"
	"fmt"
	"log"
	"strings"
	"time"
)

// handlerFunc builds the final response for one intent. It receives the raw
// message, the canned template already chosen for the intent, and the
// caller's context; returning the template unchanged is always valid.
type handlerFunc func(e *Engine, message, template string, uc *UserContext) string

// handlerTable maps persisted handler identifiers to builders. The set is
// closed; an unknown identifier leaves the canned template untouched.
var handlerTable = map[string]handlerFunc{
	"handle_greeting":   (*Engine).handleGreeting,
	"handle_faculty":    (*Engine).handleFaculty,
	"handle_attendance": (*Engine).handleAttendance,
	"handle_events":     (*Engine).handleEvents,
	"handle_quiz":       (*Engine).handleQuiz,
	"handle_courses":    (*Engine).handleCourses,
	"handle_notes":      (*Engine).handleNotes,
	"handle_thanks":     (*Engine).handleThanks,
	"handle_goodbye":    (*Engine).handleGoodbye,
	"handle_help":       (*Engine).handleHelp,
	"handle_default":    (*Engine).handleDefault,
}

func (e *Engine) handleGreeting(message, template string, uc *UserContext) string {
	userName := "there"
	if uc != nil && uc.IsAuthenticated && uc.FirstName != "" {
		userName = uc.FirstName
	}

	greetings := []string{
		fmt.Sprintf("Hello %s! 👋 How can I help you today?", userName),
		fmt.Sprintf("Hi %s! What would you like to know about college?", userName),
		fmt.Sprintf("Hey %s! I'm here to assist you with faculty info, attendance, events, and more!", userName),
		fmt.Sprintf("Greetings %s! How may I assist you today?", userName),
	}

	hour := e.now().Hour()
	switch {
	case hour >= 5 && hour < 12:
		greetings = append(greetings, fmt.Sprintf("Good morning %s! Ready to start the day?", userName))
	case hour >= 12 && hour < 17:
		greetings = append(greetings, fmt.Sprintf("Good afternoon %s! How's your day going?", userName))
	case hour >= 17 && hour < 22:
		greetings = append(greetings, fmt.Sprintf("Good evening %s! Hope you had a productive day!", userName))
	}

	return greetings[e.pick(len(greetings))]
}

func (e *Engine) handleFaculty(message, template string, uc *UserContext) string {
	messageLower := strings.ToLower(strings.TrimSpace(message))

	facultyMembers, err := e.activeFaculty()
	if err != nil {
		log.Printf("Error handling faculty query: %v", err)
		return "I'm having trouble accessing faculty information right now. Please try again later."
	}

	if len(facultyMembers) == 0 {
		return "I don't have any faculty information available at the moment. Please contact the administration for faculty details."
	}

	// Specific faculty member by first or last name
	for i := range facultyMembers {
		f := &facultyMembers[i]
		if f.User == nil {
			continue
		}
		firstName := strings.ToLower(f.User.FirstName)
		lastName := strings.ToLower(f.User.LastName)
		if (firstName != "" && strings.Contains(messageLower, firstName)) ||
			(lastName != "" && strings.Contains(messageLower, lastName)) {
			return formatFacultyInfo(f)
		}
	}

	// Department names take priority over the general list
	if response := checkDepartmentQuery(messageLower, facultyMembers); response != "" {
		return response
	}

	return showFacultyList(facultyMembers)
}

// activeFaculty loads all active faculty profiles with their user accounts
func (e *Engine) activeFaculty() ([]models.Faculty, error) {
	var faculty []models.Faculty
	err := e.db.Preload("User").Where("is_active = ?", true).Find(&faculty).Error
	return faculty, err
}

// showFacultyList renders the complete roster grouped by department
func showFacultyList(facultyMembers []models.Faculty) string {
	var sb strings.Builder
	sb.WriteString("👥 **Faculty Members List:**\n\n")

	grouped := make(map[string][]*models.Faculty)
	var order []string
	for i := range facultyMembers {
		f := &facultyMembers[i]
		dept := f.Department
		if dept == "" {
			dept = "Other"
		}
		if _, ok := grouped[dept]; !ok {
			order = append(order, dept)
		}
		grouped[dept] = append(grouped[dept], f)
	}

	for _, dept := range order {
		sb.WriteString(fmt.Sprintf("📚 **%s:**\n", dept))
		for _, f := range grouped[dept] {
			sb.WriteString(fmt.Sprintf("   👨‍🏫 **%s** - %s\n", f.Name(), f.Designation))
			if f.OfficeLocation != "" {
				sb.WriteString(fmt.Sprintf("      📍 Office: %s\n", f.OfficeLocation))
			}
			if f.Email() != "" {
				sb.WriteString(fmt.Sprintf("      📧 %s\n", f.Email()))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("💡 **Need more details?** Just mention any faculty member's name and I'll provide their complete information!")
	return sb.String()
}

func formatFacultyInfo(f *models.Faculty) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👨‍🏫 **%s**\n\n", f.Name()))
	sb.WriteString(fmt.Sprintf("🏢 **Department:** %s\n", f.Department))
	sb.WriteString(fmt.Sprintf("🎓 **Designation:** %s\n", f.Designation))

	if f.Specialization != "" {
		sb.WriteString(fmt.Sprintf("🔬 **Specialization:** %s\n", f.Specialization))
	}
	if f.OfficeLocation != "" {
		sb.WriteString(fmt.Sprintf("📍 **Office:** %s\n", f.OfficeLocation))
	}
	if f.OfficeHours != "" {
		sb.WriteString(fmt.Sprintf("🕒 **Office Hours:** %s\n", f.OfficeHours))
	}
	if f.Email() != "" {
		sb.WriteString(fmt.Sprintf("📧 **Email:** %s\n", f.Email()))
	}
	if f.Phone() != "" {
		sb.WriteString(fmt.Sprintf("📞 **Phone:** %s\n", f.Phone()))
	}
	if f.Bio != "" {
		sb.WriteString(fmt.Sprintf("\n📝 **About:** %s\n", f.Bio))
	}

	return sb.String()
}

// departmentKeywords maps common shorthand to search terms. Used as the
// second pass when no live department name matches.
var departmentKeywords = []struct {
	keyword string
	terms   []string
}{
	{"computer science", []string{"computer science", "cs", "cse"}},
	{"computer", []string{"computer science", "computer"}},
	{"cs", []string{"computer science", "cs"}},
	{"information technology", []string{"information technology", "it"}},
	{"it", []string{"information technology", "it"}},
	{"mathematics", []string{"mathematics", "math", "maths"}},
	{"math", []string{"mathematics", "math"}},
	{"physics", []string{"physics"}},
	{"chemistry", []string{"chemistry"}},
	{"biology", []string{"biology"}},
	{"english", []string{"english", "literature"}},
	{"literature", []string{"english", "literature"}},
	{"history", []string{"history"}},
	{"economics", []string{"economics"}},
	{"business", []string{"business", "management"}},
	{"management", []string{"management", "business"}},
	{"engineering", []string{"engineering"}},
}

// checkDepartmentQuery resolves a department mention to its roster. Live
// department names are checked first, then the keyword table.
func checkDepartmentQuery(messageLower string, facultyMembers []models.Faculty) string {
	// Exact/substring match against departments actually on file
	seen := make(map[string]bool)
	for i := range facultyMembers {
		dept := facultyMembers[i].Department
		if dept == "" || seen[dept] {
			continue
		}
		seen[dept] = true

		deptLower := strings.ToLower(dept)
		if messageLower == deptLower ||
			messageLower == deptLower+" department" ||
			messageLower == "department of "+deptLower ||
			strings.Contains(messageLower, deptLower) {
			roster := filterFacultyByDepartment(facultyMembers, []string{deptLower})
			if len(roster) > 0 {
				return formatDepartmentFacultyList(roster, dept)
			}
		}
	}

	// Keyword table second
	for _, entry := range departmentKeywords {
		matched := false
		for _, term := range entry.terms {
			if strings.Contains(messageLower, term) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		roster := filterFacultyByDepartment(facultyMembers, entry.terms)
		if len(roster) > 0 {
			return formatDepartmentFacultyList(roster, roster[0].Department)
		}
	}

	return ""
}

func filterFacultyByDepartment(facultyMembers []models.Faculty, terms []string) []*models.Faculty {
	var roster []*models.Faculty
	added := make(map[uint]bool)
	for i := range facultyMembers {
		f := &facultyMembers[i]
		deptLower := strings.ToLower(f.Department)
		for _, term := range terms {
			if strings.Contains(deptLower, term) && !added[f.ID] {
				roster = append(roster, f)
				added[f.ID] = true
				break
			}
		}
	}
	return roster
}

func formatDepartmentFacultyList(roster []*models.Faculty, departmentName string) string {
	if len(roster) == 0 {
		return fmt.Sprintf("I couldn't find any faculty members in the %s department.", departmentName)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👥 **Faculty Members in %s Department:**\n\n", departmentName))

	for _, f := range roster {
		sb.WriteString(fmt.Sprintf("👨‍🏫 **%s** - %s\n", f.Name(), f.Designation))
		if f.OfficeLocation != "" {
			sb.WriteString(fmt.Sprintf("   📍 Office: %s\n", f.OfficeLocation))
		}
		if f.Email() != "" {
			sb.WriteString(fmt.Sprintf("   📧 Email: %s\n", f.Email()))
		}
		if f.Specialization != "" {
			sb.WriteString(fmt.Sprintf("   🔬 Specialization: %s\n", f.Specialization))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("💡 **Want more details?** Just mention any faculty member's name for complete information!")
	return sb.String()
}

func (e *Engine) handleAttendance(message, template string, uc *UserContext) string {
	if uc == nil || !uc.IsAuthenticated || !strings.EqualFold(uc.Role, "STUDENT") {
		return "I can only check attendance for logged-in students. Please make sure you're logged in as a student."
	}

	var records []models.Attendance
	if err := e.db.Preload("Course").Where("student_id = ?", uc.UserID).
		Order("date desc").Find(&records).Error; err != nil {
		log.Printf("Error handling attendance query: %v", err)
		return "I'm having trouble accessing your attendance records right now. Please try again later."
	}

	if len(records) == 0 {
		return fmt.Sprintf("Hi %s! I don't see any attendance records for you yet. Your attendance will appear here once classes begin and attendance is marked.", uc.FirstName)
	}

	totalClasses := len(records)
	presentClasses := 0
	for _, r := range records {
		if r.Status == "present" {
			presentClasses++
		}
	}
	percentage := float64(presentClasses) / float64(totalClasses) * 100

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 **Attendance Summary for %s**\n\n", uc.FullName))
	sb.WriteString(fmt.Sprintf("📈 **Overall Attendance:** %.1f%% (%d/%d classes)\n", percentage, presentClasses, totalClasses))

	switch {
	case percentage >= 85:
		sb.WriteString("✅ Excellent attendance! Keep it up!\n\n")
	case percentage >= 75:
		sb.WriteString("👍 Good attendance, but try to improve!\n\n")
	default:
		sb.WriteString("⚠️ Low attendance! Please attend more classes.\n\n")
	}

	// Last 5 records, newest first
	recent := records
	if len(recent) > 5 {
		recent = recent[:5]
	}
	sb.WriteString("📅 **Recent Attendance:**\n")
	for _, r := range recent {
		statusEmoji := "🕐"
		switch r.Status {
		case "present":
			statusEmoji = "✅"
		case "absent":
			statusEmoji = "❌"
		}
		courseName := "Unknown Course"
		if r.Course != nil {
			courseName = r.Course.CourseName
		}
		sb.WriteString(fmt.Sprintf("   %s %s - %s (%s)\n",
			statusEmoji, r.Date.Format("Jan 02"), courseName, strings.Title(r.Status)))
	}

	sb.WriteString("\n💡 Tip: Maintain at least 75% attendance to be eligible for exams!")
	return sb.String()
}

// startOfDay returns midnight of t's calendar day in t's location
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (e *Engine) handleEvents(message, template string, uc *UserContext) string {
	today := startOfDay(e.now())

	var events []models.Event
	if err := e.db.Where("start_date >= ? AND is_active = ?", today, true).
		Order("start_date asc").Limit(20).Find(&events).Error; err != nil {
		log.Printf("Error handling events query: %v", err)
		return "I'm having trouble accessing the events calendar right now. Please try again later."
	}

	if len(events) == 0 {
		return "📅 No upcoming events scheduled. Stay tuned for updates!"
	}

	typeEmoji := map[string]string{
		"academic": "📚",
		"cultural": "🎭",
		"sports":   "⚽",
		"holiday":  "🎉",
		"exam":     "📝",
		"other":    "📌",
	}

	var sb strings.Builder
	sb.WriteString("📅 **Upcoming Events & Holidays:**\n\n")

	for _, event := range events {
		emoji, ok := typeEmoji[event.EventType]
		if !ok {
			emoji = "📌"
		}

		sb.WriteString(fmt.Sprintf("%s **%s**\n", emoji, event.Title))
		sb.WriteString(fmt.Sprintf("   📅 %s", event.StartDate.Format("January 02, 2006")))
		if event.StartTime != "" {
			sb.WriteString(fmt.Sprintf(" at %s", event.StartTime))
		}
		if event.EndDate != nil && !event.EndDate.Equal(event.StartDate) {
			sb.WriteString(fmt.Sprintf(" - %s", event.EndDate.Format("January 02, 2006")))
		}
		sb.WriteString("\n")

		if event.Location != "" {
			sb.WriteString(fmt.Sprintf("   📍 %s\n", event.Location))
		}
		if event.Description != "" {
			sb.WriteString(fmt.Sprintf("   📝 %s\n", event.Description))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("🔔 Mark your calendars and don't miss out!")
	return sb.String()
}

func (e *Engine) handleQuiz(message, template string, uc *UserContext) string {
	messageClean := strings.ToUpper(strings.TrimSpace(message))
	if isQuizAnswerLetter(messageClean) && uc != nil && uc.IsAuthenticated {
		if session := e.findActiveQuizSession(uc.UserID); session != nil {
			return e.gradeQuizAnswer(session, messageClean)
		}
	}

	sessionID := ""
	if uc != nil {
		sessionID = uc.SessionID
	}
	return e.startNewQuiz(message, uc, sessionID)
}

func (e *Engine) handleCourses(message, template string, uc *UserContext) string {
	var courses []models.Course
	if err := e.db.Preload("Faculty.User").Where("is_active = ?", true).
		Limit(10).Find(&courses).Error; err != nil {
		log.Printf("Error handling courses query: %v", err)
		return "I'm having trouble accessing course information right now. Please try again later."
	}

	if len(courses) == 0 {
		return "No course information is available at the moment. Please contact the administration for course details."
	}

	var sb strings.Builder
	sb.WriteString("📚 **Available Courses:**\n\n")

	for i := range courses {
		course := &courses[i]
		sb.WriteString(fmt.Sprintf("📖 **%s** (%s)\n", course.CourseName, course.CourseCode))
		sb.WriteString(fmt.Sprintf("   🎓 Credits: %d\n", course.Credits))
		sb.WriteString(fmt.Sprintf("   📅 Semester: %d, Year: %d\n", course.Semester, course.Year))
		sb.WriteString(fmt.Sprintf("   🏢 Department: %s\n", course.Department))

		if course.Faculty != nil {
			sb.WriteString(fmt.Sprintf("   👨‍🏫 Instructor: %s\n", course.Faculty.Name()))
		}
		if course.Description != "" {
			sb.WriteString(fmt.Sprintf("   📝 %s\n", course.Description))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Need more details about any specific course? Just ask!")
	return sb.String()
}

func (e *Engine) handleNotes(message, template string, uc *UserContext) string {
	return "📚 Study notes and materials will be available soon! In the meantime, make sure to:\n\n" +
		"✏️ Take good notes during lectures\n" +
		"📖 Review your textbooks regularly\n" +
		"👥 Form study groups with classmates\n" +
		"🤔 Ask questions when you don't understand\n\n" +
		"Keep checking back for uploaded notes and study materials!"
}

func (e *Engine) handleThanks(message, template string, uc *UserContext) string {
	responses := []string{
		"You're very welcome! 😊 Happy to help!",
		"Glad I could assist you! 🌟 Feel free to ask anytime!",
		"My pleasure! 👍 That's what I'm here for!",
		"You're welcome! 🎉 Don't hesitate to reach out if you need anything else!",
		"Anytime! 😄 I'm always here to help students like you!",
	}
	return responses[e.pick(len(responses))]
}

func (e *Engine) handleGoodbye(message, template string, uc *UserContext) string {
	userName := ""
	if uc != nil && uc.IsAuthenticated {
		userName = uc.FirstName
	}

	goodbyes := []string{
		fmt.Sprintf("Goodbye %s! 👋 Have a fantastic day!", userName),
		fmt.Sprintf("See you later %s! 🌟 Take care!", userName),
		fmt.Sprintf("Farewell %s! 😊 Don't hesitate to come back if you need help!", userName),
		fmt.Sprintf("Until next time %s! 🎓 Best of luck with your studies!", userName),
		fmt.Sprintf("Bye %s! 🌈 Hope I was helpful today!", userName),
	}
	return goodbyes[e.pick(len(goodbyes))]
}

func (e *Engine) handleHelp(message, template string, uc *UserContext) string {
	var sb strings.Builder
	sb.WriteString("🤖 **EduBot Help Center** 🤖\n\n")
	sb.WriteString("I'm your college assistant! Here's what I can help you with:\n\n")
	sb.WriteString("👨‍🏫 **Faculty Info:** Ask about professors, departments, and contact details\n")
	sb.WriteString("📊 **Attendance:** Check your attendance records and percentages\n")
	sb.WriteString("📅 **Events:** See upcoming college events and holidays\n")
	sb.WriteString("📚 **Courses:** Get information about available courses\n")
	sb.WriteString("🧠 **Quiz:** Test your knowledge with interactive questions\n")
	sb.WriteString("📖 **Study Notes:** Find study materials and resources\n\n")
	sb.WriteString("💡 **How to use:**\n")
	sb.WriteString("• Just type naturally! Ask questions like:\n")
	sb.WriteString("  - \"Show me faculty info\"\n")
	sb.WriteString("  - \"What's my attendance?\"\n")
	sb.WriteString("  - \"Any upcoming events?\"\n")
	sb.WriteString("  - \"Quiz me!\"\n\n")
	sb.WriteString("🚀 Try the quick action buttons below for easy access!")
	return sb.String()
}

// handleDefault re-runs faculty name and department detection before giving
// up, so an unrecognized message naming a professor still resolves to
// faculty info instead of falling through to the AI fallback.
func (e *Engine) handleDefault(message, template string, uc *UserContext) string {
	facultyMembers, err := e.activeFaculty()
	if err != nil {
		log.Printf("Error checking for faculty/department: %v", err)
		return template
	}

	if response := checkForFacultyName(message, facultyMembers); response != "" {
		return response
	}
	if response := checkDepartmentQuery(strings.ToLower(strings.TrimSpace(message)), facultyMembers); response != "" {
		return response
	}

	// Leave the template in place so the AI fallback can take over upstream
	return template
}

// checkForFacultyName resolves a message that is (or contains) a faculty
// member's name. Exact combinations are tried first, then partial matches;
// several partial matches produce a disambiguation list.
func checkForFacultyName(message string, facultyMembers []models.Faculty) string {
	messageLower := strings.ToLower(strings.TrimSpace(message))
	if messageLower == "" {
		return ""
	}

	for i := range facultyMembers {
		f := &facultyMembers[i]
		if f.User == nil {
			continue
		}
		firstName := strings.ToLower(f.User.FirstName)
		lastName := strings.ToLower(f.User.LastName)
		fullName := strings.ToLower(f.User.FullName())

		exactForms := []string{
			firstName, lastName, fullName,
			firstName + " " + lastName,
			lastName + " " + firstName,
			"prof " + firstName, "prof " + lastName,
			"professor " + firstName, "professor " + lastName,
			"dr " + firstName, "dr " + lastName,
			"dr. " + firstName, "dr. " + lastName,
		}
		for _, form := range exactForms {
			if messageLower == form {
				return formatFacultyInfo(f)
			}
		}

		if strings.Contains(messageLower, firstName) && strings.Contains(messageLower, lastName) {
			return formatFacultyInfo(f)
		}
	}

	var partial []*models.Faculty
	for i := range facultyMembers {
		f := &facultyMembers[i]
		if f.User == nil {
			continue
		}
		firstName := strings.ToLower(f.User.FirstName)
		lastName := strings.ToLower(f.User.LastName)
		if (firstName != "" && strings.Contains(messageLower, firstName)) ||
			(lastName != "" && strings.Contains(messageLower, lastName)) {
			partial = append(partial, f)
		}
	}

	if len(partial) == 1 {
		return formatFacultyInfo(partial[0])
	}
	if len(partial) > 1 {
		var sb strings.Builder
		sb.WriteString("👨‍🏫 I found multiple faculty members matching your search:\n\n")
		for _, f := range partial {
			sb.WriteString(fmt.Sprintf("• **%s** - %s (%s)\n", f.Name(), f.Designation, f.Department))
		}
		sb.WriteString("\n💡 Please be more specific with the full name for detailed information.")
		return sb.String()
	}

	return ""
}

// isFacultyRelated reports whether a message should be protected from the AI
// fallback because it concerns faculty: either by keyword or by naming a
// known active faculty member.
func (e *Engine) isFacultyRelated(message string) bool {
	messageLower := strings.ToLower(message)

	facultyKeywords := []string{
		"faculty", "professor", "teacher", "instructor", "staff",
		"department", "teaches", "teaching", "lecturer", "dr.",
		"computer science", "mathematics", "physics", "chemistry",
		"biology", "history", "english", "psychology", "economics",
	}
	for _, keyword := range facultyKeywords {
		if strings.Contains(messageLower, keyword) {
			return true
		}
	}

	facultyMembers, err := e.activeFaculty()
	if err != nil {
		log.Printf("Error checking if faculty related: %v", err)
		return false
	}

	for i := range facultyMembers {
		f := &facultyMembers[i]
		if f.User == nil {
			continue
		}
		firstName := strings.ToLower(f.User.FirstName)
		lastName := strings.ToLower(f.User.LastName)
		fullName := strings.ToLower(f.User.FullName())

		if (strings.Contains(messageLower, firstName) && strings.Contains(messageLower, lastName)) ||
			strings.Contains(messageLower, fullName) ||
			(len(firstName) > 2 && strings.Contains(messageLower, firstName)) ||
			(len(lastName) > 2 && strings.Contains(messageLower, lastName)) {
			return true
		}
	}

	return false
}
