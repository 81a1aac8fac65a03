package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/AITS-2025/issue-tracking-service/internal/events"
	"github.com/AITS-2025/issue-tracking-service/internal/models"
	"github.com/AITS-2025/issue-tracking-service/internal/repositories"
	"github.com/AITS-2025/issue-tracking-service/internal/validator"
)

// fakeRepo is an in-memory Repository. The mutex makes TransitionStatus an
// honest compare-and-swap, which the concurrency tests rely on.
type fakeRepo struct {
	mu sync.Mutex

	issues        map[uint]*models.Issue
	updates       []*models.IssueUpdate
	notifications []*models.Notification
	users         map[uint]*models.User
	courses       map[uint]*models.Course

	nextIssueID  uint
	nextUpdateID uint
	nextNotifID  uint
	clock        time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		issues:  make(map[uint]*models.Issue),
		users:   make(map[uint]*models.User),
		courses: make(map[uint]*models.Course),
		clock:   time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (r *fakeRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *fakeRepo) addUser(u *models.User) *models.User {
	r.users[u.ID] = u
	return u
}

func (r *fakeRepo) addCourse(c *models.Course) *models.Course {
	r.courses[c.ID] = c
	return c
}

func (r *fakeRepo) cloneIssue(issue *models.Issue) *models.Issue {
	clone := *issue
	if student, ok := r.users[issue.StudentID]; ok {
		clone.Student = student
	}
	if issue.AssignedToID != nil {
		if assignee, ok := r.users[*issue.AssignedToID]; ok {
			clone.AssignedTo = assignee
		}
	}
	if course, ok := r.courses[issue.CourseID]; ok {
		clone.Course = course
	}
	return &clone
}

func (r *fakeRepo) Issue() repositories.IssueRepository               { return &fakeIssueRepo{r} }
func (r *fakeRepo) IssueUpdate() repositories.IssueUpdateRepository   { return &fakeUpdateRepo{r} }
func (r *fakeRepo) Notification() repositories.NotificationRepository { return &fakeNotifRepo{r} }
func (r *fakeRepo) User() repositories.UserRepository                 { return &fakeUserRepo{r} }
func (r *fakeRepo) Course() repositories.CourseRepository             { return &fakeCourseRepo{r} }

func (r *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}
func (r *fakeRepo) Ping(ctx context.Context) error { return nil }
func (r *fakeRepo) Close() error                   { return nil }

type fakeIssueRepo struct{ r *fakeRepo }

func (f *fakeIssueRepo) Create(ctx context.Context, tx *gorm.DB, issue *models.Issue) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	f.r.nextIssueID++
	issue.ID = f.r.nextIssueID
	issue.CreatedAt = f.r.tick()
	issue.UpdatedAt = issue.CreatedAt

	stored := *issue
	f.r.issues[issue.ID] = &stored
	return nil
}

func (f *fakeIssueRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Issue, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	issue, ok := f.r.issues[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *issue
	return &clone, nil
}

func (f *fakeIssueRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Issue, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	issue, ok := f.r.issues[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return f.r.cloneIssue(issue), nil
}

func (f *fakeIssueRepo) matchFilters(issue *models.Issue, filters repositories.IssueFilters) bool {
	if filters.Status != nil && issue.Status != *filters.Status {
		return false
	}
	if filters.Category != nil && issue.Category != *filters.Category {
		return false
	}
	if filters.CourseID != nil && issue.CourseID != *filters.CourseID {
		return false
	}
	return true
}

func (f *fakeIssueRepo) list(pred func(*models.Issue) bool, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	var matched []*models.Issue
	for _, issue := range f.r.issues {
		if pred(issue) && f.matchFilters(issue, filters) {
			matched = append(matched, f.r.cloneIssue(issue))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}

	return matched, total, nil
}

func (f *fakeIssueRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	return f.list(func(*models.Issue) bool { return true }, filters)
}

func (f *fakeIssueRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	return f.list(func(i *models.Issue) bool { return i.StudentID == studentID }, filters)
}

func (f *fakeIssueRepo) ListByAssignee(ctx context.Context, tx *gorm.DB, assigneeID uint, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	return f.list(func(i *models.Issue) bool { return i.IsAssignedTo(assigneeID) }, filters)
}

func (f *fakeIssueRepo) ListByCollege(ctx context.Context, tx *gorm.DB, collegeID uint, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	return f.list(func(i *models.Issue) bool {
		student, ok := f.r.users[i.StudentID]
		return ok && student.CollegeID != nil && *student.CollegeID == collegeID
	}, filters)
}

func (f *fakeIssueRepo) TransitionStatus(ctx context.Context, tx *gorm.DB, issueID uint, from, to models.IssueStatus, assigneeID *uint) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	issue, ok := f.r.issues[issueID]
	if !ok || issue.Status != from {
		return false, nil
	}

	issue.Status = to
	if assigneeID != nil {
		issue.AssignedToID = assigneeID
	}
	issue.UpdatedAt = f.r.tick()
	return true, nil
}

func (f *fakeIssueRepo) StatsByCollege(ctx context.Context, tx *gorm.DB, collegeID uint) (*repositories.IssueStats, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	stats := &repositories.IssueStats{}
	for _, issue := range f.r.issues {
		student, ok := f.r.users[issue.StudentID]
		if !ok || student.CollegeID == nil || *student.CollegeID != collegeID {
			continue
		}
		stats.Total++
		switch issue.Status {
		case models.StatusOpen:
			stats.Open++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusResolved:
			stats.Resolved++
		}
	}
	return stats, nil
}

type fakeUpdateRepo struct{ r *fakeRepo }

func (f *fakeUpdateRepo) Create(ctx context.Context, tx *gorm.DB, update *models.IssueUpdate) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	f.r.nextUpdateID++
	update.ID = f.r.nextUpdateID
	update.CreatedAt = f.r.tick()

	stored := *update
	f.r.updates = append(f.r.updates, &stored)
	return nil
}

func (f *fakeUpdateRepo) ListByIssue(ctx context.Context, tx *gorm.DB, issueID uint) ([]*models.IssueUpdate, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	var out []*models.IssueUpdate
	for _, u := range f.r.updates {
		if u.IssueID == issueID {
			clone := *u
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeNotifRepo struct{ r *fakeRepo }

func (f *fakeNotifRepo) Create(ctx context.Context, tx *gorm.DB, n *models.Notification) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	f.r.nextNotifID++
	n.ID = f.r.nextNotifID
	n.CreatedAt = f.r.tick()

	stored := *n
	f.r.notifications = append(f.r.notifications, &stored)
	return nil
}

func (f *fakeNotifRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	var out []*models.Notification
	for _, n := range f.r.notifications {
		if n.UserID != userID {
			continue
		}
		if filters.UnreadOnly && n.IsRead {
			continue
		}
		clone := *n
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotifRepo) MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	for _, n := range f.r.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifRepo) CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	var count int64
	for _, n := range f.r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct{ r *fakeRepo }

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	user, ok := f.r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByCasdoorID(ctx context.Context, tx *gorm.DB, casdoorID string) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	for _, user := range f.r.users {
		if user.CasdoorID == casdoorID {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	f.r.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) ListLecturersByDepartment(ctx context.Context, tx *gorm.DB, departmentID uint) ([]*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	var out []*models.User
	for _, user := range f.r.users {
		if user.Role == models.RoleLecturer && user.DepartmentID != nil && *user.DepartmentID == departmentID {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakeCourseRepo struct{ r *fakeRepo }

func (f *fakeCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	course, ok := f.r.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return course, nil
}

func (f *fakeCourseRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	var out []*models.Course
	for _, course := range f.r.courses {
		if filters.DepartmentID != nil && course.DepartmentID != *filters.DepartmentID {
			continue
		}
		out = append(out, course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// ===== TEST SETUP =====

func newTestIssueService(t *testing.T) (IssueService, *fakeRepo, *events.MockEventPublisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	repo := newFakeRepo()

	repo.addCourse(&models.Course{ID: 1, Code: "CS101", Name: "Data Structures", DepartmentID: 1})

	return NewIssueService(repo, nil, logger, validator.New(), publisher), repo, publisher
}

func validCreateRequest() *CreateIssueRequest {
	return &CreateIssueRequest{
		Category:    models.CategoryMissingMarks,
		Description: "Missing coursework marks for test 2",
		YearOfStudy: "Year Two",
		Semester:    models.SemesterFirst,
		CourseID:    1,
	}
}

// ===== TESTS =====

func TestIssueService_Create(t *testing.T) {
	svc, repo, publisher := newTestIssueService(t)
	ctx := context.Background()

	student := repo.addUser(testStudent(10, 1))

	t.Run("submitter is always the actor", func(t *testing.T) {
		issue, err := svc.Create(ctx, validCreateRequest(), student)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if issue.StudentID != student.ID {
			t.Errorf("StudentID = %d, want actor %d", issue.StudentID, student.ID)
		}
		if issue.Status != models.StatusOpen {
			t.Errorf("Status = %s, want open", issue.Status)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventIssueCreated {
			t.Errorf("expected one %s event, got %v", events.EventIssueCreated, published)
		}
	})

	t.Run("non-students cannot create", func(t *testing.T) {
		lecturer := repo.addUser(testLecturer(20))

		_, err := svc.Create(ctx, validCreateRequest(), lecturer)
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})

	t.Run("invalid category rejected", func(t *testing.T) {
		req := validCreateRequest()
		req.Category = "harassment"

		_, err := svc.Create(ctx, req, student)
		var validationErrs ValidationErrors
		if !errors.As(err, &validationErrs) {
			t.Fatalf("expected ValidationErrors, got %v", err)
		}
	})

	t.Run("invalid semester rejected", func(t *testing.T) {
		req := validCreateRequest()
		req.Semester = 3

		_, err := svc.Create(ctx, req, student)
		var validationErrs ValidationErrors
		if !errors.As(err, &validationErrs) {
			t.Fatalf("expected ValidationErrors, got %v", err)
		}
	})

	t.Run("unknown course rejected", func(t *testing.T) {
		req := validCreateRequest()
		req.CourseID = 999

		_, err := svc.Create(ctx, req, student)
		if !errors.Is(err, ErrCourseNotFound) {
			t.Fatalf("expected ErrCourseNotFound, got %v", err)
		}
	})
}

func TestIssueService_Assign(t *testing.T) {
	svc, repo, publisher := newTestIssueService(t)
	ctx := context.Background()

	student := repo.addUser(testStudent(10, 1))
	lecturer := repo.addUser(testLecturer(20))
	registrar := repo.addUser(testRegistrar(30, 1))

	created, err := svc.Create(ctx, validCreateRequest(), student)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	publisher.ClearEvents()

	t.Run("assignment couples to in_progress", func(t *testing.T) {
		issue, err := svc.Assign(ctx, created.ID, &AssignIssueRequest{AssigneeID: lecturer.ID}, registrar)
		if err != nil {
			t.Fatalf("Assign failed: %v", err)
		}
		if issue.Status != models.StatusInProgress {
			t.Errorf("Status = %s, want in_progress", issue.Status)
		}
		if issue.AssignedToID == nil || *issue.AssignedToID != lecturer.ID {
			t.Errorf("AssignedToID = %v, want %d", issue.AssignedToID, lecturer.ID)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventIssueAssigned {
			t.Fatalf("expected one %s event, got %v", events.EventIssueAssigned, published)
		}

		// Assignee gets notified
		notifs, _, _ := repo.Notification().ListByUser(ctx, nil, lecturer.ID, repositories.NotificationFilters{})
		if len(notifs) != 1 {
			t.Errorf("expected 1 notification for assignee, got %d", len(notifs))
		}
	})

	t.Run("reassigning an in_progress issue fails", func(t *testing.T) {
		_, err := svc.Assign(ctx, created.ID, &AssignIssueRequest{AssigneeID: registrar.ID}, registrar)
		var stateErr *InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	})

	t.Run("students cannot hold assignments", func(t *testing.T) {
		other, err := svc.Create(ctx, validCreateRequest(), student)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		_, err = svc.Assign(ctx, other.ID, &AssignIssueRequest{AssigneeID: student.ID}, registrar)
		var validationErrs ValidationErrors
		if !errors.As(err, &validationErrs) {
			t.Fatalf("expected ValidationErrors, got %v", err)
		}
	})

	t.Run("registrar of another college cannot assign", func(t *testing.T) {
		outsider := repo.addUser(testRegistrar(31, 2))

		other, err := svc.Create(ctx, validCreateRequest(), student)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		_, err = svc.Assign(ctx, other.ID, &AssignIssueRequest{AssigneeID: lecturer.ID}, outsider)
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})
}

func TestIssueService_Resolve(t *testing.T) {
	svc, repo, _ := newTestIssueService(t)
	ctx := context.Background()

	student := repo.addUser(testStudent(10, 1))
	lecturer := repo.addUser(testLecturer(20))
	registrar := repo.addUser(testRegistrar(30, 1))

	created, err := svc.Create(ctx, validCreateRequest(), student)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("unassigned issue cannot be resolved", func(t *testing.T) {
		_, err := svc.Resolve(ctx, created.ID, registrar)
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})

	if _, err := svc.Assign(ctx, created.ID, &AssignIssueRequest{AssigneeID: lecturer.ID}, registrar); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	t.Run("only the assignee resolves", func(t *testing.T) {
		otherLecturer := repo.addUser(testLecturer(21))
		var permErr *PermissionError

		_, err := svc.Resolve(ctx, created.ID, registrar)
		if !errors.As(err, &permErr) {
			t.Fatalf("in-college registrar is not the assignee: expected PermissionError, got %v", err)
		}

		_, err = svc.Resolve(ctx, created.ID, otherLecturer)
		if !errors.As(err, &permErr) {
			t.Fatalf("unassigned lecturer: expected PermissionError, got %v", err)
		}

		_, err = svc.Resolve(ctx, created.ID, student)
		if !errors.As(err, &permErr) {
			t.Fatalf("student: expected PermissionError, got %v", err)
		}
	})

	t.Run("assigned lecturer resolves", func(t *testing.T) {
		issue, err := svc.Resolve(ctx, created.ID, lecturer)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if issue.Status != models.StatusResolved {
			t.Errorf("Status = %s, want resolved", issue.Status)
		}

		// Submitting student gets notified
		notifs, _, _ := repo.Notification().ListByUser(ctx, nil, student.ID, repositories.NotificationFilters{})
		if len(notifs) == 0 {
			t.Error("expected a notification for the student")
		}
	})

	t.Run("resolved is terminal", func(t *testing.T) {
		_, err := svc.Resolve(ctx, created.ID, lecturer)
		var stateErr *InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}

		_, err = svc.MarkInProgress(ctx, created.ID, registrar)
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	})
}

func TestIssueService_MarkInProgress_ConcurrentSingleWinner(t *testing.T) {
	svc, repo, _ := newTestIssueService(t)
	ctx := context.Background()

	student := repo.addUser(testStudent(10, 1))
	registrar := repo.addUser(testRegistrar(30, 1))

	created, err := svc.Create(ctx, validCreateRequest(), student)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const workers = 10

	var wg sync.WaitGroup
	results := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.MarkInProgress(ctx, created.ID, registrar)
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		var stateErr *InvalidStateError
		if errors.As(err, &stateErr) {
			losses++
		} else {
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
	if losses != workers-1 {
		t.Errorf("losses = %d, want %d", losses, workers-1)
	}
}

func TestIssueService_ListScoping(t *testing.T) {
	svc, repo, _ := newTestIssueService(t)
	ctx := context.Background()

	alice := repo.addUser(testStudent(10, 1))
	bob := repo.addUser(testStudent(11, 2))
	lecturer := repo.addUser(testLecturer(20))
	registrar := repo.addUser(testRegistrar(30, 1))

	aliceIssue, err := svc.Create(ctx, validCreateRequest(), alice)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, validCreateRequest(), bob); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("student sees only own issues", func(t *testing.T) {
		list, err := svc.List(ctx, ListIssuesRequest{}, alice)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if list.Total != 1 || list.Issues[0].StudentID != alice.ID {
			t.Errorf("student scope leaked: total=%d", list.Total)
		}
	})

	t.Run("registrar sees only their college", func(t *testing.T) {
		list, err := svc.List(ctx, ListIssuesRequest{}, registrar)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if list.Total != 1 || list.Issues[0].StudentID != alice.ID {
			t.Errorf("college scope leaked: total=%d", list.Total)
		}
	})

	t.Run("student cannot read another student's issue", func(t *testing.T) {
		_, err := svc.GetByID(ctx, aliceIssue.ID, bob)
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})

	t.Run("lecturer scope follows assignment", func(t *testing.T) {
		list, err := svc.ListAssigned(ctx, ListIssuesRequest{}, lecturer)
		if err != nil {
			t.Fatalf("ListAssigned failed: %v", err)
		}
		if list.Total != 0 {
			t.Errorf("unassigned lecturer should see nothing, got %d", list.Total)
		}

		if _, err := svc.Assign(ctx, aliceIssue.ID, &AssignIssueRequest{AssigneeID: lecturer.ID}, registrar); err != nil {
			t.Fatalf("Assign failed: %v", err)
		}

		list, err = svc.ListAssigned(ctx, ListIssuesRequest{}, lecturer)
		if err != nil {
			t.Fatalf("ListAssigned failed: %v", err)
		}
		if list.Total != 1 {
			t.Errorf("assigned lecturer should see 1 issue, got %d", list.Total)
		}
	})

	t.Run("students cannot list assigned", func(t *testing.T) {
		_, err := svc.ListAssigned(ctx, ListIssuesRequest{}, alice)
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})
}

func TestIssueService_ListHistory(t *testing.T) {
	svc, repo, _ := newTestIssueService(t)
	ctx := context.Background()

	student := repo.addUser(testStudent(10, 1))
	lecturer := repo.addUser(testLecturer(20))
	registrar := repo.addUser(testRegistrar(30, 1))

	first, err := svc.Create(ctx, validCreateRequest(), student)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, validCreateRequest(), student); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Assign(ctx, first.ID, &AssignIssueRequest{AssigneeID: lecturer.ID}, registrar); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if _, err := svc.Resolve(ctx, first.ID, lecturer); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	list, err := svc.ListHistory(ctx, ListIssuesRequest{}, registrar)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if list.Total != 2 {
		t.Errorf("history should cover every state, total=%d, want 2", list.Total)
	}

	resolved := models.StatusResolved
	list, err = svc.ListHistory(ctx, ListIssuesRequest{Status: &resolved}, registrar)
	if err != nil {
		t.Fatalf("ListHistory with status filter failed: %v", err)
	}
	if list.Total != 1 || list.Issues[0].Status != models.StatusResolved {
		t.Errorf("status filter should narrow history, total=%d", list.Total)
	}

	if _, err := svc.ListHistory(ctx, ListIssuesRequest{}, student); err == nil {
		t.Error("history must be registrar-only")
	}
}

func TestIssueService_UpdateTrail(t *testing.T) {
	svc, repo, _ := newTestIssueService(t)
	ctx := context.Background()

	student := repo.addUser(testStudent(10, 1))
	registrar := repo.addUser(testRegistrar(30, 1))

	created, err := svc.Create(ctx, validCreateRequest(), student)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	comments := []string{"first comment", "second comment", "third comment"}
	for _, comment := range comments {
		if _, err := svc.AddUpdate(ctx, created.ID, &IssueCommentRequest{Comment: comment}, student); err != nil {
			t.Fatalf("AddUpdate failed: %v", err)
		}
	}

	updates, err := svc.ListUpdates(ctx, created.ID, registrar)
	if err != nil {
		t.Fatalf("ListUpdates failed: %v", err)
	}
	if len(updates) != len(comments) {
		t.Fatalf("updates = %d, want %d", len(updates), len(comments))
	}
	for i, update := range updates {
		if update.Comment != comments[i] {
			t.Errorf("update %d = %q, want %q (insertion order)", i, update.Comment, comments[i])
		}
	}

	t.Run("outsider cannot comment", func(t *testing.T) {
		outsider := repo.addUser(testStudent(11, 1))
		_, err := svc.AddUpdate(ctx, created.ID, &IssueCommentRequest{Comment: "hi"}, outsider)
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})
}

func TestIssueService_Stats(t *testing.T) {
	svc, repo, _ := newTestIssueService(t)
	ctx := context.Background()

	student := repo.addUser(testStudent(10, 1))
	registrar := repo.addUser(testRegistrar(30, 1))

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, validCreateRequest(), student); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := svc.MarkInProgress(ctx, 1, registrar); err != nil {
		t.Fatalf("MarkInProgress failed: %v", err)
	}

	stats, err := svc.Stats(ctx, registrar)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 3 || stats.Open != 2 || stats.InProgress != 1 {
		t.Errorf("stats = %+v, want total=3 open=2 in_progress=1", stats)
	}

	if _, err := svc.Stats(ctx, student); err == nil {
		t.Error("stats must be registrar-only")
	}
}
