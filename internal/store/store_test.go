package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tasknest/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s, err := New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func mustCreateUser(t *testing.T, s *Store, email string) *model.User {
	t.Helper()
	user, _, err := s.CreateUser(context.Background(), email, "Test User", "hashed")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustCreateTask(t *testing.T, s *Store, userID, name string) *model.Task {
	t.Helper()
	task := &model.Task{
		UserID:      userID,
		Name:        name,
		Priority:    "low",
		IsCompleted: false,
	}
	if err := s.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestCreateUser_DuplicateEmailConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "a@x.com")

	_, _, err := s.CreateUser(ctx, "a@x.com", "Other", "hashed2")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	var count int64
	if err := s.db.Model(&model.User{}).Where("email = ?", "a@x.com").Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user row, got %d", count)
	}
}

func TestCreateUser_DefaultPreference(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := mustCreateUser(t, s, "pref@x.com")

	pref, err := s.GetPreference(ctx, user.ID)
	if err != nil {
		t.Fatalf("get preference: %v", err)
	}
	if pref.Theme != "light" || pref.DefaultView != "list" {
		t.Fatalf("unexpected defaults: theme=%q default_view=%q", pref.Theme, pref.DefaultView)
	}
	if !pref.EmailNotifications || !pref.InAppNotifications {
		t.Fatalf("expected notification flags to default true")
	}
}

func TestUpdateUser_NoFields(t *testing.T) {
	s := newTestStore(t)
	user := mustCreateUser(t, s, "empty@x.com")

	_, err := s.UpdateUser(context.Background(), user.ID, map[string]interface{}{})
	if !errors.Is(err, ErrNoFields) {
		t.Fatalf("expected ErrNoFields, got %v", err)
	}
}

func TestUpdateUser_IgnoresUnknownFields(t *testing.T) {
	s := newTestStore(t)
	user := mustCreateUser(t, s, "unknown@x.com")

	_, err := s.UpdateUser(context.Background(), user.ID, map[string]interface{}{
		"created_at": time.Now().Add(time.Hour),
		"user_id":    "hijack",
	})
	if !errors.Is(err, ErrNoFields) {
		t.Fatalf("expected fields outside the allowlist to be dropped, got %v", err)
	}
}

func TestUpdateTask_PartialUpdateAdvancesUpdatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, s, "task@x.com")
	task := mustCreateTask(t, s, user.ID, "Buy milk")

	time.Sleep(10 * time.Millisecond)

	updated, err := s.UpdateTask(ctx, user.ID, task.ID, map[string]interface{}{
		"is_completed": true,
	})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if !updated.IsCompleted {
		t.Fatalf("expected is_completed to flip")
	}
	if updated.Name != "Buy milk" || updated.Priority != "low" {
		t.Fatalf("expected untouched fields to survive, got name=%q priority=%q", updated.Name, updated.Priority)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updated_at to advance: created=%v updated=%v", updated.CreatedAt, updated.UpdatedAt)
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	s := newTestStore(t)
	user := mustCreateUser(t, s, "missing@x.com")

	_, err := s.UpdateTask(context.Background(), user.ID, "no-such-task", map[string]interface{}{"name": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTask_OtherUsersTaskInvisible(t *testing.T) {
	s := newTestStore(t)
	owner := mustCreateUser(t, s, "owner@x.com")
	intruder := mustCreateUser(t, s, "intruder@x.com")
	task := mustCreateTask(t, s, owner.ID, "Secret")

	_, err := s.UpdateTask(context.Background(), intruder.ID, task.ID, map[string]interface{}{"name": "stolen"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign task, got %v", err)
	}
}

func TestDeleteTask_CascadesReminders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, s, "cascade@x.com")
	task := mustCreateTask(t, s, user.ID, "With reminder")

	reminder := &model.TaskReminder{TaskID: task.ID, ReminderTime: time.Now().Add(time.Hour)}
	if err := s.CreateReminder(ctx, user.ID, reminder); err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	if err := s.DeleteTask(ctx, user.ID, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := s.GetTask(ctx, user.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected task gone, got %v", err)
	}
	if _, err := s.GetReminder(ctx, reminder.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected reminder gone, got %v", err)
	}

	if err := s.DeleteTask(ctx, user.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected second delete to report ErrNotFound, got %v", err)
	}
}

func TestListTasks_FiltersSortAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, s, "list@x.com")
	other := mustCreateUser(t, s, "other@x.com")

	names := []string{"alpha", "bravo", "charlie"}
	for i, name := range names {
		task := &model.Task{
			UserID:      user.ID,
			Name:        name,
			Priority:    "low",
			IsCompleted: i == 1, // bravo 已完成
		}
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatalf("create task %s: %v", name, err)
		}
	}
	mustCreateTask(t, s, other.ID, "foreign")

	completed := true
	tasks, err := s.ListTasks(ctx, user.ID, TaskFilter{
		ListQuery:   ListQuery{Limit: 10, Offset: 0, SortBy: "name", SortOrder: "asc"},
		IsCompleted: &completed,
	})
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "bravo" {
		t.Fatalf("expected only bravo, got %+v", tasks)
	}

	tasks, err = s.ListTasks(ctx, user.ID, TaskFilter{
		ListQuery: ListQuery{Limit: 2, Offset: 1, SortBy: "name", SortOrder: "asc"},
	})
	if err != nil {
		t.Fatalf("list paginated: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Name != "bravo" || tasks[1].Name != "charlie" {
		t.Fatalf("unexpected page: %+v", tasks)
	}

	tasks, err = s.ListTasks(ctx, user.ID, TaskFilter{
		ListQuery: ListQuery{Query: "alp", Limit: 10, SortBy: "created_at", SortOrder: "desc"},
	})
	if err != nil {
		t.Fatalf("list substring: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "alpha" {
		t.Fatalf("expected substring match for alpha, got %+v", tasks)
	}
}

func TestListTasks_RejectsUnknownSortColumn(t *testing.T) {
	s := newTestStore(t)
	user := mustCreateUser(t, s, "sort@x.com")

	_, err := s.ListTasks(context.Background(), user.ID, TaskFilter{
		ListQuery: ListQuery{Limit: 10, SortBy: "password_hash", SortOrder: "asc"},
	})
	if !errors.Is(err, ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got %v", err)
	}

	_, err = s.ListTasks(context.Background(), user.ID, TaskFilter{
		ListQuery: ListQuery{Limit: 10, SortBy: "name", SortOrder: "asc; DROP TABLE tasks"},
	})
	if !errors.Is(err, ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort for bad order, got %v", err)
	}
}

func TestDeleteCategory_DetachesTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, s, "cat@x.com")

	category := &model.Category{UserID: user.ID, Name: "Chores", ColorCode: "#FF8800"}
	if err := s.CreateCategory(ctx, category); err != nil {
		t.Fatalf("create category: %v", err)
	}

	task := &model.Task{UserID: user.ID, Name: "Dusting", Priority: "low", CategoryID: &category.ID}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := s.DeleteCategory(ctx, user.ID, category.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	got, err := s.GetTask(ctx, user.ID, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.CategoryID != nil {
		t.Fatalf("expected category_id cleared, got %v", *got.CategoryID)
	}
}

func TestListReminders_ScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustCreateUser(t, s, "ro@x.com")
	other := mustCreateUser(t, s, "rx@x.com")

	ownTask := mustCreateTask(t, s, owner.ID, "mine")
	otherTask := mustCreateTask(t, s, other.ID, "theirs")

	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	if err := s.CreateReminder(ctx, owner.ID, &model.TaskReminder{TaskID: ownTask.ID, ReminderTime: at}); err != nil {
		t.Fatalf("create own reminder: %v", err)
	}
	if err := s.CreateReminder(ctx, other.ID, &model.TaskReminder{TaskID: otherTask.ID, ReminderTime: at}); err != nil {
		t.Fatalf("create other reminder: %v", err)
	}

	reminders, err := s.ListReminders(ctx, owner.ID, ReminderFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list reminders: %v", err)
	}
	if len(reminders) != 1 || reminders[0].TaskID != ownTask.ID {
		t.Fatalf("expected only the owner's reminder, got %+v", reminders)
	}
}

func TestCreateReminder_UnknownTask(t *testing.T) {
	s := newTestStore(t)
	user := mustCreateUser(t, s, "norem@x.com")

	err := s.CreateReminder(context.Background(), user.ID, &model.TaskReminder{
		TaskID:       "no-such-task",
		ReminderTime: time.Now(),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
