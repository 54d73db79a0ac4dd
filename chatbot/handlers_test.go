package chatbot

import (
	"edubot/models"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedFaculty(t *testing.T, db *gorm.DB, firstName, lastName, department, designation string) models.Faculty {
	t.Helper()
	user := seedUser(t, db, firstName, lastName, "FACULTY")
	faculty := models.Faculty{
		UserID:      &user.ID,
		EmployeeId:  fmt.Sprintf("EMP-%d", user.ID),
		Department:  department,
		Designation: designation,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&faculty).Error)
	faculty.User = &user
	return faculty
}

func TestFacultyByName(t *testing.T) {
	db := newTestDB(t)
	seedFaculty(t, db, "Alice", "Johnson", "Computer Science", "Professor")
	seedFaculty(t, db, "Bob", "Smith", "Physics", "Assistant Professor")
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("tell me about professor alice", 0, "", ClientMeta{})
	assert.Equal(t, "faculty_info", result.Intent)
	assert.Contains(t, result.Response, "Alice Johnson")
	assert.Contains(t, result.Response, "Computer Science")
	assert.NotContains(t, result.Response, "Bob Smith")
}

func TestFacultyDepartmentRoster(t *testing.T) {
	db := newTestDB(t)
	seedFaculty(t, db, "Alice", "Johnson", "Computer Science", "Professor")
	seedFaculty(t, db, "Bob", "Smith", "Physics", "Assistant Professor")
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("Computer Science", 0, "", ClientMeta{})
	assert.Equal(t, "faculty_info", result.Intent)
	assert.Contains(t, result.Response, "Faculty Members in Computer Science Department")
	assert.Contains(t, result.Response, "Alice Johnson")
	assert.NotContains(t, result.Response, "Bob Smith")
}

func TestFacultyFullList(t *testing.T) {
	db := newTestDB(t)
	seedFaculty(t, db, "Alice", "Johnson", "Computer Science", "Professor")
	seedFaculty(t, db, "Bob", "Smith", "Physics", "Assistant Professor")
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("show me faculty", 0, "", ClientMeta{})
	assert.Contains(t, result.Response, "Faculty Members List")
	assert.Contains(t, result.Response, "Alice Johnson")
	assert.Contains(t, result.Response, "Bob Smith")
	assert.Contains(t, result.Response, "Computer Science")
	assert.Contains(t, result.Response, "Physics")
}

func TestFacultyNoData(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("show me faculty", 0, "", ClientMeta{})
	assert.Contains(t, result.Response, "don't have any faculty information")
}

func TestDefaultHandlerResolvesFacultyName(t *testing.T) {
	db := newTestDB(t)
	seedFaculty(t, db, "Alice", "Johnson", "Computer Science", "Professor")
	gen := &stubGenerator{available: true, response: "should not be used"}
	engine := newTestEngine(t, db, WithGenerator(gen))

	// The message matches no intent pattern, but names a real faculty member;
	// the catch-all handler resolves it and the AI fallback stays out.
	result := engine.ProcessMessage("alice johnson??", 0, "", ClientMeta{})
	assert.Equal(t, "default", result.Intent)
	assert.Contains(t, result.Response, "Alice Johnson")
	assert.Contains(t, result.Response, "Computer Science")
	assert.Equal(t, 0, gen.calls)
}

func TestFacultyNameDisambiguation(t *testing.T) {
	db := newTestDB(t)
	seedFaculty(t, db, "Alice", "Johnson", "Computer Science", "Professor")
	seedFaculty(t, db, "Mark", "Johnson", "Physics", "Lecturer")
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("johnson please", 0, "", ClientMeta{})
	assert.Contains(t, result.Response, "multiple faculty members")
	assert.Contains(t, result.Response, "Alice Johnson")
	assert.Contains(t, result.Response, "Mark Johnson")
}

func TestAttendanceRequiresStudent(t *testing.T) {
	db := newTestDB(t)
	faculty := seedUser(t, db, "Frank", "Taylor", "FACULTY")
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("my attendance", faculty.ID, "", ClientMeta{})
	assert.Contains(t, result.Response, "logged-in students")

	result = engine.ProcessMessage("my attendance", 0, "", ClientMeta{})
	assert.Contains(t, result.Response, "logged-in students")
}

func TestAttendanceNoRecords(t *testing.T) {
	db := newTestDB(t)
	student := seedUser(t, db, "Jane", "Doe", "STUDENT")
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("my attendance", student.ID, "", ClientMeta{})
	assert.Contains(t, result.Response, "don't see any attendance records")
	assert.Contains(t, result.Response, "Jane")
}

func seedAttendance(t *testing.T, db *gorm.DB, studentID, courseID uint, present, absent int) {
	t.Helper()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < present+absent; i++ {
		status := "present"
		if i >= present {
			status = "absent"
		}
		record := models.Attendance{
			StudentID: studentID,
			CourseID:  courseID,
			Date:      day.AddDate(0, 0, i),
			Status:    status,
		}
		require.NoError(t, db.Create(&record).Error)
	}
}

func seedCourse(t *testing.T, db *gorm.DB, code, name string, facultyID *uint) models.Course {
	t.Helper()
	course := models.Course{
		CourseCode: code,
		CourseName: name,
		Credits:    4,
		Semester:   1,
		Year:       2026,
		Department: "Computer Science",
		FacultyID:  facultyID,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func TestAttendanceSummaryTiers(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, "CS101", "Data Structures", nil)
	engine := newTestEngine(t, db)

	tiers := []struct {
		present, absent int
		want            string
	}{
		{9, 1, "Excellent attendance"},
		{8, 2, "Good attendance"},
		{7, 3, "Low attendance"},
	}
	for i, tier := range tiers {
		student := seedUser(t, db, fmt.Sprintf("Stu%d", i), "Dent", "STUDENT")
		seedAttendance(t, db, student.ID, course.ID, tier.present, tier.absent)

		result := engine.ProcessMessage("check attendance", student.ID, "", ClientMeta{})
		assert.Contains(t, result.Response, tier.want)
		assert.Contains(t, result.Response,
			fmt.Sprintf("(%d/%d classes)", tier.present, tier.present+tier.absent))
	}
}

func TestAttendanceRecentRecords(t *testing.T) {
	db := newTestDB(t)
	student := seedUser(t, db, "Jane", "Doe", "STUDENT")
	course := seedCourse(t, db, "CS101", "Data Structures", nil)
	seedAttendance(t, db, student.ID, course.ID, 9, 1)
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("my attendance", student.ID, "", ClientMeta{})
	assert.Contains(t, result.Response, "Recent Attendance")
	assert.Contains(t, result.Response, "Data Structures")
	// Newest record first: the absent day (Mar 10) precedes older present days
	assert.Contains(t, result.Response, "Mar 10")
	absentIdx := strings.Index(result.Response, "Mar 10")
	presentIdx := strings.Index(result.Response, "Mar 09")
	require.GreaterOrEqual(t, absentIdx, 0)
	require.GreaterOrEqual(t, presentIdx, 0)
	assert.Less(t, absentIdx, presentIdx)
	// Only the last five days are shown
	assert.NotContains(t, result.Response, "Mar 05")
}

func seedEvent(t *testing.T, db *gorm.DB, title, eventType string, start time.Time, active bool) models.Event {
	t.Helper()
	event := models.Event{
		Title:     title,
		EventType: eventType,
		StartDate: start,
		IsActive:  active,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func TestEventsUpcomingOnly(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	seedEvent(t, db, "Winter Break", "holiday", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), true)
	seedEvent(t, db, "Spring Fest", "cultural", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), true)
	seedEvent(t, db, "Tech Symposium", "academic", time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC), true)
	seedEvent(t, db, "Cancelled Meetup", "other", time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), false)
	engine := newTestEngine(t, db, WithClock(func() time.Time { return now }))

	result := engine.ProcessMessage("any upcoming events", 0, "", ClientMeta{})
	assert.Equal(t, "events", result.Intent)
	assert.Contains(t, result.Response, "Spring Fest")
	assert.Contains(t, result.Response, "Tech Symposium")
	assert.NotContains(t, result.Response, "Winter Break")
	assert.NotContains(t, result.Response, "Cancelled Meetup")

	// Soonest first
	symposiumIdx := strings.Index(result.Response, "Tech Symposium")
	festIdx := strings.Index(result.Response, "Spring Fest")
	assert.Less(t, symposiumIdx, festIdx)
}

func TestStartOfDayUsesLocalCalendar(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2026, 1, 10, 7, 0, 0, 0, loc)

	today := startOfDay(now)
	assert.True(t, today.Equal(time.Date(2026, 1, 10, 0, 0, 0, 0, loc)))
	assert.Equal(t, loc, today.Location())

	// Truncating absolute time would land on the previous local day
	assert.True(t, now.Truncate(24*time.Hour).Before(today))
}

func TestEventsCutoffIsLocalMidnight(t *testing.T) {
	db := newTestDB(t)
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2026, 1, 10, 7, 0, 0, 0, loc)
	seedEvent(t, db, "Last Night Social", "cultural", time.Date(2026, 1, 9, 18, 0, 0, 0, loc), true)
	seedEvent(t, db, "Morning Assembly", "academic", time.Date(2026, 1, 10, 0, 0, 0, 0, loc), true)
	engine := newTestEngine(t, db, WithClock(func() time.Time { return now }))

	result := engine.ProcessMessage("any upcoming events", 0, "", ClientMeta{})
	assert.Contains(t, result.Response, "Morning Assembly")
	assert.NotContains(t, result.Response, "Last Night Social")
}

func TestEventsNoneScheduled(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("any upcoming events", 0, "", ClientMeta{})
	assert.Contains(t, result.Response, "No upcoming events")
}

func TestCoursesListedWithInstructor(t *testing.T) {
	db := newTestDB(t)
	faculty := seedFaculty(t, db, "Alice", "Johnson", "Computer Science", "Professor")
	seedCourse(t, db, "CS101", "Data Structures", &faculty.ID)
	seedCourse(t, db, "CS205", "Operating Systems", nil)
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("what courses are offered", 0, "", ClientMeta{})
	assert.Equal(t, "courses", result.Intent)
	assert.Contains(t, result.Response, "Data Structures")
	assert.Contains(t, result.Response, "CS101")
	assert.Contains(t, result.Response, "Instructor: Alice Johnson")
	assert.Contains(t, result.Response, "Operating Systems")
}

func TestGreetingTimeOfDay(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "Jane", "Doe", "STUDENT")
	morning := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	// Pick the last candidate, which is the time-of-day greeting when present
	engine := newTestEngine(t, db,
		WithClock(func() time.Time { return morning }),
		WithSelector(func(n int) int { return n - 1 }),
	)

	result := engine.ProcessMessage("hello", user.ID, "", ClientMeta{})
	assert.Equal(t, "Good morning Jane! Ready to start the day?", result.Response)
}

func TestGreetingAnonymousFallsBackToThere(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db)

	result := engine.ProcessMessage("hello", 0, "", ClientMeta{})
	assert.Contains(t, result.Response, "Hello there!")
}
