// Package fields — декларативные контракты полей запроса.
//
// Контракт (Field) задаёт имя, вид (Kind) и два флага: required и nullable.
// Assign применяет контракт к сырому телу запроса и возвращает Outcome:
// поле не передано (Missing/Empty), передано с ошибкой (Invalid) или
// принято (Valid). Исключений для управления потоком нет: вызывающий код
// сам решает, какой исход считать ошибкой протокола.
package fields

import (
	"fmt"
	"time"
)

// Field — контракт одного поля. Неизменяем после объявления схемы.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Nullable bool
}

// Schema — упорядоченный список контрактов. Порядок важен: именно в нём
// диспетчер проверяет поля, и от него зависит, какая ошибка победит.
type Schema []Field

// Lookup ищет контракт по имени.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names возвращает имена полей в порядке объявления.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// Status — исход присваивания поля.
type Status int

const (
	// Missing — обязательное поле отсутствует в теле.
	Missing Status = iota
	// Empty — необязательное поле отсутствует. Это не ошибка.
	Empty
	// Invalid — поле передано, но null запрещён или значение не прошло
	// проверку вида.
	Invalid
	// Valid — значение принято (в том числе null для nullable-поля).
	Valid
)

func (s Status) String() string {
	switch s {
	case Missing:
		return "missing"
	case Empty:
		return "empty"
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome — результат Assign. Value заполнен только для Valid и уже
// нормализован под вид поля (см. Kind). Reason поясняет Invalid для логов.
type Outcome struct {
	Status Status
	Value  any
	Reason string
}

// Null сообщает, что поле передано явным null и это допустимо.
func (o Outcome) Null() bool {
	return o.Status == Valid && o.Value == nil
}

// Assign применяет контракт f к телу body.
//
// now нужен только для BirthDate (ограничение по возрасту); остальным видам
// он безразличен.
func Assign(f Field, body map[string]any, now time.Time) Outcome {
	raw, ok := body[f.Name]
	if !ok {
		if f.Required {
			return Outcome{Status: Missing}
		}
		return Outcome{Status: Empty}
	}

	if raw == nil {
		if !f.Nullable {
			return Outcome{Status: Invalid, Reason: "cannot be null"}
		}
		return Outcome{Status: Valid}
	}

	v, err := f.Kind.check(raw, now)
	if err != nil {
		return Outcome{Status: Invalid, Reason: err.Error()}
	}
	return Outcome{Status: Valid, Value: v}
}
