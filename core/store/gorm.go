package store

import (
	"context"
	"errors"
	"fmt"

	"watchstate/core/database"
	"watchstate/core/entity"
	"watchstate/core/identity"

	"gorm.io/gorm"
)

// stateRow is one entity in the "state" table.
type stateRow struct {
	ID       int64                      `gorm:"column:id;primaryKey;autoIncrement"`
	Type     string                     `gorm:"column:type;size:16;not null;index"`
	Watched  bool                       `gorm:"column:watched;not null"`
	Updated  int64                      `gorm:"column:updated;not null"`
	Via      string                     `gorm:"column:via;size:64"`
	Title    string                     `gorm:"column:title;size:255"`
	Year     int                        `gorm:"column:year"`
	Season   int                        `gorm:"column:season"`
	Episode  int                        `gorm:"column:episode"`
	Guids    identity.Set               `gorm:"column:guids;serializer:json"`
	Parent   identity.Set               `gorm:"column:parent;serializer:json"`
	Metadata map[string]entity.Metadata `gorm:"column:metadata;serializer:json"`
}

// TableName overrides the table name.
func (stateRow) TableName() string {
	return "state"
}

// pointerRow maps one pointer to the entity that claims it.
type pointerRow struct {
	Pointer  string `gorm:"column:pointer;size:255;primaryKey"`
	EntityID int64  `gorm:"column:entity_id;primaryKey;index"`
}

// TableName overrides the table name.
func (pointerRow) TableName() string {
	return "state_pointers"
}

var (
	stateColumns   = []string{"id", "type", "watched", "updated", "via", "title", "year", "season", "episode", "guids", "parent", "metadata"}
	pointerColumns = []string{"pointer", "entity_id"}
)

func toRow(e *entity.Entity) stateRow {
	return stateRow{
		ID:       e.ID,
		Type:     string(e.Type),
		Watched:  e.Watched,
		Updated:  e.Updated,
		Via:      e.Via,
		Title:    e.Title,
		Year:     e.Year,
		Season:   e.Season,
		Episode:  e.Episode,
		Guids:    e.Identity,
		Parent:   e.Parent,
		Metadata: e.Metadata,
	}
}

func (r stateRow) toEntity() *entity.Entity {
	return &entity.Entity{
		ID:       r.ID,
		Type:     entity.Type(r.Type),
		Watched:  r.Watched,
		Updated:  r.Updated,
		Via:      r.Via,
		Title:    r.Title,
		Year:     r.Year,
		Season:   r.Season,
		Episode:  r.Episode,
		Identity: r.Guids,
		Parent:   r.Parent,
		Metadata: r.Metadata,
	}
}

func pointerRows(e *entity.Entity) []pointerRow {
	ptrs := e.Pointers()
	rows := make([]pointerRow, 0, len(ptrs))
	for _, p := range ptrs {
		rows = append(rows, pointerRow{Pointer: string(p), EntityID: e.ID})
	}
	return rows
}

// gormSession runs the contract against a *gorm.DB that is either the pool
// (auto-commit) or an open transaction.
type gormSession struct {
	db *gorm.DB
}

func (s gormSession) FindByPointers(ctx context.Context, t entity.Type, pointers []identity.Pointer) (*entity.Entity, error) {
	if len(pointers) == 0 {
		return nil, nil
	}
	keys := make([]string, len(pointers))
	for i, p := range pointers {
		keys[i] = string(p)
	}

	var row stateRow
	err := s.db.WithContext(ctx).
		Select("state.*").
		Joins("JOIN state_pointers ON state_pointers.entity_id = state.id").
		Where("state.type = ? AND state_pointers.pointer IN ?", string(t), keys).
		Order("state.id ASC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, opErr("find", err)
	}
	return row.toEntity(), nil
}

func (s gormSession) Get(ctx context.Context, id int64) (*entity.Entity, error) {
	var row stateRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, opErr("get", ErrNotFound)
	}
	if err != nil {
		return nil, opErr("get", err)
	}
	return row.toEntity(), nil
}

func (s gormSession) All(ctx context.Context) ([]*entity.Entity, error) {
	var rows []stateRow
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, opErr("all", err)
	}
	out := make([]*entity.Entity, len(rows))
	for i, r := range rows {
		out[i] = r.toEntity()
	}
	return out, nil
}

func (s gormSession) Insert(ctx context.Context, e *entity.Entity) (int64, error) {
	row := toRow(e)
	row.ID = 0

	err := s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		stored := row.toEntity()
		if ptrs := pointerRows(stored); len(ptrs) > 0 {
			return tx.Create(&ptrs).Error
		}
		return nil
	})
	if err != nil {
		return 0, opErr("insert", err)
	}
	return row.ID, nil
}

func (s gormSession) Update(ctx context.Context, e *entity.Entity) error {
	if e.ID <= 0 {
		return opErr("update", ErrNotFound)
	}
	row := toRow(e)

	err := s.write(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&stateRow{ID: row.ID}).Select("*").Omit("id").Updates(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// MySQL reports zero affected rows for unchanged values.
			var count int64
			if err := tx.Model(&stateRow{}).Where("id = ?", row.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
		}
		if err := tx.Where("entity_id = ?", row.ID).Delete(&pointerRow{}).Error; err != nil {
			return err
		}
		if ptrs := pointerRows(e); len(ptrs) > 0 {
			return tx.Create(&ptrs).Error
		}
		return nil
	})
	return opErr("update", err)
}

// write runs fn atomically. Inside an open transaction gorm nests it under a
// savepoint, so a failed write leaves no partial rows behind at commit.
func (s gormSession) write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// Gorm is a Store backed by a SQL database through gorm.
type Gorm struct {
	gormSession
}

// NewGorm wraps an open gorm connection. Call Migrate before first use.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{gormSession{db: db}}
}

// DB returns the underlying connection.
func (g *Gorm) DB() *gorm.DB {
	return g.db
}

// Migrate creates or updates the state tables.
func (g *Gorm) Migrate(ctx context.Context) error {
	if err := g.db.WithContext(ctx).AutoMigrate(&stateRow{}, &pointerRow{}); err != nil {
		return fmt.Errorf("failed to migrate state tables: %w", err)
	}
	return nil
}

// Verify checks that both tables carry every expected column.
func (g *Gorm) Verify(ctx context.Context) error {
	db := g.db.WithContext(ctx)
	for table, expected := range map[string][]string{"state": stateColumns, "state_pointers": pointerColumns} {
		missing, err := database.MissingColumns(db, table, expected)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("table %s is missing columns %v", table, missing)
		}
	}
	return nil
}

// Begin implements Store.
func (g *Gorm) Begin(ctx context.Context) (Tx, error) {
	tx := g.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, opErr("begin", tx.Error)
	}
	return &gormTx{gormSession: gormSession{db: tx}}, nil
}

type gormTx struct {
	gormSession
	done bool
}

func (t *gormTx) Commit() error {
	if t.done {
		return opErr("commit", ErrTxDone)
	}
	t.done = true
	return opErr("commit", t.db.Commit().Error)
}

func (t *gormTx) Rollback() error {
	if t.done {
		return opErr("rollback", ErrTxDone)
	}
	t.done = true
	return opErr("rollback", t.db.Rollback().Error)
}
