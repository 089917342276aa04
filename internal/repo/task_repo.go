package repo

import (
	"context"
	"time"

	dom "github.com/annie987/todo/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskRepo provides task persistence. Missing rows are reported as
// gorm.ErrRecordNotFound.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id int64) (dom.Task, error)
	List(ctx context.Context) ([]dom.Task, error)
	Update(ctx context.Context, id int64, patch dom.TaskPatch) (dom.Task, error)
	Delete(ctx context.Context, id int64) error
}

// taskRow is the storage shape of a task in table "task".
type taskRow struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string     `gorm:"column:title;size:100;not null"`
	Description *string    `gorm:"column:description;size:255"`
	Completed   bool       `gorm:"column:completed;not null"`
	DueDate     *time.Time `gorm:"column:due_date"`
	Priority    string     `gorm:"column:priority;size:10;not null;default:low"`
}

func (taskRow) TableName() string { return "task" }

func rowFromTask(t dom.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		Priority:    string(t.Priority),
	}
}

func (r taskRow) toTask() dom.Task {
	t := dom.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    dom.Priority(r.Priority),
	}
	if r.DueDate != nil {
		d := r.DueDate.UTC()
		t.DueDate = &d
	}
	return t
}

// patchColumns maps a partial update onto the columns it touches.
func patchColumns(p dom.TaskPatch) map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Completed != nil {
		cols["completed"] = *p.Completed
	}
	if p.Priority != nil {
		cols["priority"] = string(*p.Priority)
	}
	if p.DueDateSet {
		cols["due_date"] = p.DueDate
	}
	return cols
}

// GormTaskRepo implements TaskRepo with GORM.
type GormTaskRepo struct {
	db *gorm.DB
}

// NewGormTaskRepo returns a new GormTaskRepo.
func NewGormTaskRepo(db *gorm.DB) *GormTaskRepo {
	return &GormTaskRepo{db: db}
}

func (r *GormTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	row := rowFromTask(t)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return dom.Task{}, err
	}
	return row.toTask(), nil
}

func (r *GormTaskRepo) GetByID(ctx context.Context, id int64) (dom.Task, error) {
	var row taskRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return dom.Task{}, err
	}
	return row.toTask(), nil
}

// List returns every task in insertion order.
func (r *GormTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	var rows []taskRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	list := make([]dom.Task, len(rows))
	for i := range rows {
		list[i] = rows[i].toTask()
	}
	return list, nil
}

// Update writes only the columns present in patch with a single
// UPDATE ... RETURNING statement. An empty patch degrades to a read.
func (r *GormTaskRepo) Update(ctx context.Context, id int64, patch dom.TaskPatch) (dom.Task, error) {
	cols := patchColumns(patch)
	if len(cols) == 0 {
		return r.GetByID(ctx, id)
	}
	var row taskRow
	res := updateStmt(r.db.WithContext(ctx), &row, id, cols)
	if res.Error != nil {
		return dom.Task{}, res.Error
	}
	if res.RowsAffected == 0 {
		return dom.Task{}, gorm.ErrRecordNotFound
	}
	return row.toTask(), nil
}

// updateStmt issues UPDATE "task" SET <cols> WHERE id = ? RETURNING * into dest.
func updateStmt(db *gorm.DB, dest *taskRow, id int64, cols map[string]interface{}) *gorm.DB {
	return db.Model(dest).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(cols)
}

func (r *GormTaskRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&taskRow{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
