package psqlbuilder

import (
	"errors"

	"github.com/Masterminds/squirrel"
)

// ErrEmptyPatch возвращается, когда в патче нет ни одного изменения
var ErrEmptyPatch = errors.New("psqlbuilder: empty patch")

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Select начинает SELECT запрос с плейсхолдерами PostgreSQL ($1, $2, ...)
func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

// Insert начинает INSERT запрос
func Insert(table string) squirrel.InsertBuilder {
	return builder.Insert(table)
}

// Update начинает UPDATE запрос
func Update(table string) squirrel.UpdateBuilder {
	return builder.Update(table)
}

// Delete начинает DELETE запрос
func Delete(table string) squirrel.DeleteBuilder {
	return builder.Delete(table)
}

// Patch упорядоченный набор изменений для частичного UPDATE
// Порядок колонок сохраняется, поэтому SQL детерминирован
type Patch struct {
	columns []string
	values  []interface{}
}

// NewPatch создает пустой патч
func NewPatch() *Patch {
	return &Patch{}
}

// Set добавляет колонку в патч
func (p *Patch) Set(column string, value interface{}) *Patch {
	p.columns = append(p.columns, column)
	p.values = append(p.values, value)
	return p
}

// SetIfNotNil добавляет колонку, только если значение передано
func SetIfNotNil[T any](p *Patch, column string, value *T) *Patch {
	if value == nil {
		return p
	}
	return p.Set(column, *value)
}

// IsEmpty проверяет, что патч не содержит изменений
func (p *Patch) IsEmpty() bool {
	return len(p.columns) == 0
}

// Columns возвращает список изменяемых колонок
func (p *Patch) Columns() []string {
	return append([]string(nil), p.columns...)
}

// UpdateWithPatch строит UPDATE по патчу
func UpdateWithPatch(table string, p *Patch) (squirrel.UpdateBuilder, error) {
	if p == nil || p.IsEmpty() {
		return squirrel.UpdateBuilder{}, ErrEmptyPatch
	}

	update := Update(table)
	for i, column := range p.columns {
		update = update.Set(column, p.values[i])
	}
	return update, nil
}
