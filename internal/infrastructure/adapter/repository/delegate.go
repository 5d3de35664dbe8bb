package repository

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/database"
)

// Delegate implements persistence.Delegate for one entity type on gorm.
// All SQL it sends is built from the schema model of T; argument errors are
// reported before a connection is touched.
type Delegate[T any] struct {
	db          *gorm.DB
	model       *schema.Model
	logger      coreport.Logger
	errorMapper *database.ErrorMapper
	newID       func() string
	// batchSize bounds the rows of one INSERT sent by CreateMany
	batchSize int
}

// maxBindParams is the PostgreSQL limit on parameters of one statement
const maxBindParams = 65535

// NewDelegate creates a delegate for T, which must be registered in registry
func NewDelegate[T any](db *gorm.DB, registry *schema.Registry, logger coreport.Logger) (*Delegate[T], error) {
	m, err := schema.Of[T](registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create delegate: %w", err)
	}
	return &Delegate[T]{
		db:          db,
		model:       m,
		logger:      logger,
		errorMapper: database.NewErrorMapper(),
		newID:       uuid.NewString,
		batchSize:   insertBatchSize(m),
	}, nil
}

// insertBatchSize returns how many rows of m fit in one INSERT without
// exceeding maxBindParams
func insertBatchSize(m *schema.Model) int {
	if len(m.Fields) == 0 {
		return 1
	}
	return max(maxBindParams/len(m.Fields), 1)
}

// Model returns the metadata of T
func (d *Delegate[T]) Model() *schema.Model {
	return d.model
}

// conn returns the connection for ctx, joining its transaction if any
func (d *Delegate[T]) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, d.db)
}

// fail maps err to a domain error and logs it
func (d *Delegate[T]) fail(op string, err error) error {
	mapped := d.errorMapper.MapError(err, d.model, op)
	fields := map[string]any{
		"model":     d.model.Name,
		"operation": op,
		"kind":      string(errs.KindOf(mapped)),
		"error":     mapped.Error(),
	}
	switch errs.KindOf(mapped) {
	case errs.KindValidation, errs.KindNotFound:
		d.logger.Debug("Query rejected", fields)
	case errs.KindConstraintViolation, errs.KindWriteConflict:
		d.logger.Warn("Query failed", fields)
	default:
		d.logger.Error("Query failed", fields)
	}
	return mapped
}

func (d *Delegate[T]) invalid(op, path, format string, args ...any) error {
	return d.fail(op, errs.NewValidationError(d.model.Name, op, path, format, args...))
}

// filtered adds expr to the WHERE clause of tx; a nil expr leaves tx as is
func filtered(tx *gorm.DB, expr clause.Expression) *gorm.DB {
	if expr == nil {
		return tx
	}
	return tx.Clauses(clause.Where{Exprs: []clause.Expression{expr}})
}

// FindUnique returns the row matching a unique key, or nil
func (d *Delegate[T]) FindUnique(ctx context.Context, args query.UniqueArgs) (*T, error) {
	return d.findUnique(ctx, "findUnique", args)
}

// FindUniqueOrThrow is FindUnique failing with a NotFoundError
func (d *Delegate[T]) FindUniqueOrThrow(ctx context.Context, args query.UniqueArgs) (*T, error) {
	const op = "findUniqueOrThrow"
	row, err := d.findUnique(ctx, op, args)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, d.fail(op, errs.NewNotFoundError(d.model.Name, op))
	}
	return row, nil
}

func (d *Delegate[T]) findUnique(ctx context.Context, op string, args query.UniqueArgs) (*T, error) {
	if _, err := d.model.ValidateUniqueArgs(op, args); err != nil {
		return nil, d.fail(op, err)
	}
	expr, err := compileWhere(d.model, args.Where)
	if err != nil {
		return nil, d.invalid(op, "where", "%v", err)
	}

	d.logger.Debug("Finding unique row", map[string]any{"model": d.model.Name, "operation": op})

	tx := filtered(d.conn(ctx).Model(new(T)), expr).Limit(1)
	tx, err = d.applyProjection(tx, d.model, args.Select, args.Include)
	if err != nil {
		return nil, d.invalid(op, "include", "%v", err)
	}

	var rows []T
	if err := tx.Find(&rows).Error; err != nil {
		return nil, d.fail(op, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// FindFirst returns the first row FindMany would return, or nil. A negative
// Take returns the last row instead.
func (d *Delegate[T]) FindFirst(ctx context.Context, args query.FindArgs) (*T, error) {
	return d.findFirst(ctx, "findFirst", args)
}

// FindFirstOrThrow is FindFirst failing with a NotFoundError
func (d *Delegate[T]) FindFirstOrThrow(ctx context.Context, args query.FindArgs) (*T, error) {
	const op = "findFirstOrThrow"
	row, err := d.findFirst(ctx, op, args)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, d.fail(op, errs.NewNotFoundError(d.model.Name, op))
	}
	return row, nil
}

func (d *Delegate[T]) findFirst(ctx context.Context, op string, args query.FindArgs) (*T, error) {
	take := 1
	if args.Take != nil && *args.Take < 0 {
		take = -1
	}
	args.Take = &take
	rows, err := d.findMany(ctx, op, args)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// FindMany returns the rows matching args in OrderBy order
func (d *Delegate[T]) FindMany(ctx context.Context, args query.FindArgs) ([]T, error) {
	return d.findMany(ctx, "findMany", args)
}

func (d *Delegate[T]) findMany(ctx context.Context, op string, args query.FindArgs) ([]T, error) {
	if err := d.model.ValidateFindArgs(op, args); err != nil {
		return nil, d.fail(op, err)
	}
	rows := []T{}
	if args.Take != nil && *args.Take == 0 {
		return rows, nil
	}

	d.logger.Debug("Finding rows", map[string]any{"model": d.model.Name, "operation": op})

	tx, backward, empty, err := d.applyWindow(ctx, op, d.conn(ctx).Model(new(T)), window{
		where:    args.Where,
		orderBy:  args.OrderBy,
		cursor:   args.Cursor,
		take:     args.Take,
		skip:     args.Skip,
		distinct: args.Distinct,
	})
	if err != nil {
		return nil, d.fail(op, err)
	}
	if empty {
		return rows, nil
	}
	tx, err = d.applyProjection(tx, d.model, args.Select, args.Include)
	if err != nil {
		return nil, d.invalid(op, "include", "%v", err)
	}

	if err := tx.Find(&rows).Error; err != nil {
		return nil, d.fail(op, err)
	}
	if backward {
		slices.Reverse(rows)
	}
	return rows, nil
}

// prepare validates a row before insert: enum values must be members of
// their enum, timestamps are truncated to the database precision and an
// empty single string primary key gets a UUID.
func (d *Delegate[T]) prepare(op, path string, row *T) error {
	for _, f := range d.model.Fields {
		v := f.Value(row)
		if v == nil {
			continue
		}
		switch f.Kind {
		case schema.KindEnum:
			if _, err := schema.NormalizeValue(f, v); err != nil {
				return errs.NewValidationError(d.model.Name, op, path+"."+f.Name, "%v", err)
			}
		case schema.KindDateTime:
			if t, ok := v.(time.Time); ok && !t.IsZero() {
				f.SetValue(row, t.Truncate(time.Microsecond))
			}
		}
	}

	if len(d.model.PrimaryKey) == 1 {
		pk := d.model.PrimaryKey[0]
		if pk.Kind == schema.KindString && pk.IsZero(row) {
			pk.SetValue(row, d.newID())
		}
	}
	return nil
}

// Create inserts row and returns it with generated values filled in
func (d *Delegate[T]) Create(ctx context.Context, row *T) (*T, error) {
	const op = "create"
	if row == nil {
		return nil, d.invalid(op, "data", "create requires a row")
	}
	if err := d.prepare(op, "data", row); err != nil {
		return nil, d.fail(op, err)
	}

	d.logger.Debug("Creating row", map[string]any{"model": d.model.Name})

	if err := d.conn(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return nil, d.fail(op, err)
	}
	return row, nil
}

// CreateMany inserts rows in batches of at most batchSize rows, all inside one
// transaction. With SkipDuplicates, rows that collide with an existing row on
// any unique constraint are dropped and the returned count only covers
// inserted rows.
func (d *Delegate[T]) CreateMany(ctx context.Context, rows []T, opts query.CreateManyOptions) (int64, error) {
	const op = "createMany"
	if len(rows) == 0 {
		return 0, nil
	}
	for i := range rows {
		if err := d.prepare(op, fmt.Sprintf("data[%d]", i), &rows[i]); err != nil {
			return 0, d.fail(op, err)
		}
	}

	d.logger.Debug("Creating rows", map[string]any{
		"model":           d.model.Name,
		"count":           len(rows),
		"skip_duplicates": opts.SkipDuplicates,
		"batch_size":      d.batchSize,
	})

	tx := d.conn(ctx).Omit(clause.Associations)
	if opts.SkipDuplicates {
		tx = tx.Clauses(clause.OnConflict{DoNothing: true})
	}
	res := tx.CreateInBatches(&rows, d.batchSize)
	if res.Error != nil {
		return 0, d.fail(op, res.Error)
	}
	return res.RowsAffected, nil
}

// Update changes the row matching a unique key and returns its new state
func (d *Delegate[T]) Update(ctx context.Context, where query.Where, data query.Data) (*T, error) {
	const op = "update"
	if _, err := d.model.ValidateUniqueWhere(op, where); err != nil {
		return nil, d.fail(op, err)
	}
	if err := d.model.ValidateData(op, data); err != nil {
		return nil, d.fail(op, err)
	}
	expr, err := compileWhere(d.model, where)
	if err != nil {
		return nil, d.invalid(op, "where", "%v", err)
	}
	values, err := compileData(d.model, data)
	if err != nil {
		return nil, d.invalid(op, "data", "%v", err)
	}

	d.logger.Debug("Updating row", map[string]any{"model": d.model.Name, "fields": len(values)})

	var row T
	res := filtered(d.conn(ctx).Model(&row), expr).Clauses(clause.Returning{}).Updates(values)
	if res.Error != nil {
		return nil, d.fail(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, d.fail(op, errs.NewNotFoundError(d.model.Name, op))
	}
	return &row, nil
}

// UpdateMany changes every row matching where and returns the count
func (d *Delegate[T]) UpdateMany(ctx context.Context, where query.Where, data query.Data) (int64, error) {
	const op = "updateMany"
	if err := d.model.ValidateWhere(op, where); err != nil {
		return 0, d.fail(op, err)
	}
	if err := d.model.ValidateData(op, data); err != nil {
		return 0, d.fail(op, err)
	}
	expr, err := compileWhere(d.model, where)
	if err != nil {
		return 0, d.invalid(op, "where", "%v", err)
	}
	values, err := compileData(d.model, data)
	if err != nil {
		return 0, d.invalid(op, "data", "%v", err)
	}

	d.logger.Debug("Updating rows", map[string]any{"model": d.model.Name, "fields": len(values)})

	tx := d.conn(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Model(new(T))
	res := filtered(tx, expr).Updates(values)
	if res.Error != nil {
		return 0, d.fail(op, res.Error)
	}
	return res.RowsAffected, nil
}

// Upsert creates create, or applies update to the row matching where when it
// exists, in a single INSERT .. ON CONFLICT statement. The unique values of
// where are copied into create so both branches address the same key.
func (d *Delegate[T]) Upsert(ctx context.Context, where query.Where, create *T, update query.Data) (*T, error) {
	const op = "upsert"
	key, err := d.model.ValidateUniqueWhere(op, where)
	if err != nil {
		return nil, d.fail(op, err)
	}
	if create == nil {
		return nil, d.invalid(op, "create", "upsert requires a create row")
	}
	if len(update) > 0 {
		if err := d.model.ValidateData(op, update); err != nil {
			return nil, d.fail(op, err)
		}
	}

	for _, f := range key {
		v, err := schema.NormalizeValue(f, where.Fields[f.Name].Equals)
		if err != nil {
			return nil, d.invalid(op, "where."+f.Name, "%v", err)
		}
		if !f.SetValue(create, v) {
			return nil, d.invalid(op, "create."+f.Name, "cannot assign %T", v)
		}
	}
	if err := d.prepare(op, "create", create); err != nil {
		return nil, d.fail(op, err)
	}

	assignments, err := d.conflictAssignments(update)
	if err != nil {
		return nil, d.invalid(op, "update", "%v", err)
	}

	d.logger.Debug("Upserting row", map[string]any{
		"model": d.model.Name,
		"key":   schema.Names(key),
	})

	conflict := clause.OnConflict{DoUpdates: assignments}
	for _, f := range key {
		conflict.Columns = append(conflict.Columns, clause.Column{Name: f.Column})
	}
	err = d.conn(ctx).Omit(clause.Associations).
		Clauses(conflict, clause.Returning{}).
		Create(create).Error
	if err != nil {
		return nil, d.fail(op, err)
	}
	return create, nil
}

// conflictAssignments builds the DO UPDATE SET list of an upsert. An empty
// update becomes a no-op assignment so RETURNING still yields the row.
func (d *Delegate[T]) conflictAssignments(update query.Data) ([]clause.Assignment, error) {
	if len(update) == 0 {
		pk := d.model.PrimaryKey[0]
		return []clause.Assignment{{
			Column: clause.Column{Name: pk.Column},
			Value:  clause.Column{Table: d.model.Table, Name: pk.Column},
		}}, nil
	}

	values, err := compileData(d.model, update)
	if err != nil {
		return nil, err
	}
	for _, f := range d.model.Fields {
		if _, set := values[f.Column]; f.AutoUpdate && !set {
			values[f.Column] = d.db.NowFunc()
		}
	}

	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	slices.Sort(cols)

	out := make([]clause.Assignment, 0, len(cols))
	for _, col := range cols {
		out = append(out, clause.Assignment{Column: clause.Column{Name: col}, Value: values[col]})
	}
	return out, nil
}

// Delete removes the row matching a unique key and returns it
func (d *Delegate[T]) Delete(ctx context.Context, where query.Where) (*T, error) {
	const op = "delete"
	if _, err := d.model.ValidateUniqueWhere(op, where); err != nil {
		return nil, d.fail(op, err)
	}
	expr, err := compileWhere(d.model, where)
	if err != nil {
		return nil, d.invalid(op, "where", "%v", err)
	}

	d.logger.Debug("Deleting row", map[string]any{"model": d.model.Name})

	var row T
	res := filtered(d.conn(ctx), expr).Clauses(clause.Returning{}).Delete(&row)
	if res.Error != nil {
		return nil, d.fail(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, d.fail(op, errs.NewNotFoundError(d.model.Name, op))
	}
	return &row, nil
}

// DeleteMany removes every row matching where and returns the count
func (d *Delegate[T]) DeleteMany(ctx context.Context, where query.Where) (int64, error) {
	const op = "deleteMany"
	if err := d.model.ValidateWhere(op, where); err != nil {
		return 0, d.fail(op, err)
	}
	expr, err := compileWhere(d.model, where)
	if err != nil {
		return 0, d.invalid(op, "where", "%v", err)
	}

	d.logger.Debug("Deleting rows", map[string]any{"model": d.model.Name})

	tx := d.conn(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	res := filtered(tx, expr).Delete(new(T))
	if res.Error != nil {
		return 0, d.fail(op, res.Error)
	}
	return res.RowsAffected, nil
}
