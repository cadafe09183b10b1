package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind — закрытый набор видов полей. У каждого вида своя проверка и своя
// нормализация значения:
//
//	Text        -> string
//	Arguments   -> map[string]any (непустой)
//	Email       -> string
//	Phone       -> string (11 цифр, начинается с 7; число приводится к строке)
//	Date        -> time.Time (ДД.ММ.ГГГГ)
//	BirthDate   -> time.Time (как Date, но не старше MaxAgeYears лет)
//	Gender      -> int (0, 1, 2)
//	ClientIDs   -> []int64 (непустой список целых)
type Kind int

const (
	Text Kind = iota
	Arguments
	Email
	Phone
	Date
	BirthDate
	Gender
	ClientIDs
)

// MaxAgeYears — верхняя граница возраста для BirthDate.
const MaxAgeYears = 70

// Коды пола.
const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

var (
	emailRe = regexp.MustCompile(`^[a-z0-9]+[._]?[a-z0-9]+@\w+\.\w{2,3}$`)
	phoneRe = regexp.MustCompile(`^7\d{10}$`)
)

var (
	errNotString = errors.New("must be a string")
	errNotObject = errors.New("must be an object")
	errNotInt    = errors.New("must be an integer")
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Arguments:
		return "arguments"
	case Email:
		return "email"
	case Phone:
		return "phone"
	case Date:
		return "date"
	case BirthDate:
		return "birth_date"
	case Gender:
		return "gender"
	case ClientIDs:
		return "client_ids"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// check проверяет не-null значение и возвращает нормализованный результат.
func (k Kind) check(raw any, now time.Time) (any, error) {
	switch k {
	case Text:
		s, ok := raw.(string)
		if !ok {
			return nil, errNotString
		}
		return s, nil

	case Arguments:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, errNotObject
		}
		if len(m) == 0 {
			return nil, errors.New("must not be empty")
		}
		return m, nil

	case Email:
		s, ok := raw.(string)
		if !ok {
			return nil, errNotString
		}
		if !emailRe.MatchString(s) {
			return nil, errors.New("bad email format")
		}
		return s, nil

	case Phone:
		s, ok := phoneString(raw)
		if !ok || !phoneRe.MatchString(s) {
			return nil, errors.New("must be 11 digits starting with 7")
		}
		return s, nil

	case Date:
		return parseDate(raw)

	case BirthDate:
		d, err := parseDate(raw)
		if err != nil {
			return nil, err
		}
		if d.Before(ageLimit(now)) {
			return nil, fmt.Errorf("age exceeds %d years", MaxAgeYears)
		}
		return d, nil

	case Gender:
		n, ok := asInt(raw)
		if !ok {
			return nil, errNotInt
		}
		if n != GenderUnknown && n != GenderMale && n != GenderFemale {
			return nil, errors.New("must be one of 0, 1, 2")
		}
		return int(n), nil

	case ClientIDs:
		list, ok := raw.([]any)
		if !ok || len(list) == 0 {
			return nil, errors.New("must be a non-empty list")
		}
		ids := make([]int64, 0, len(list))
		for _, item := range list {
			n, ok := asInt(item)
			if !ok {
				return nil, errors.New("every id must be an integer")
			}
			ids = append(ids, n)
		}
		return ids, nil
	}
	return nil, fmt.Errorf("unknown field kind %s", k)
}

// parseDate принимает только строку вида ДД.ММ.ГГГГ из трёх числовых частей.
func parseDate(raw any) (time.Time, error) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, errNotString
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return time.Time{}, errors.New("must be DD.MM.YYYY")
	}
	for _, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return time.Time{}, errors.New("must be DD.MM.YYYY")
		}
	}
	// День и месяц допускаются без ведущего нуля: 1.2.1990.
	d, err := time.Parse("2.1.2006", s)
	if err != nil {
		return time.Time{}, errors.New("not a calendar date")
	}
	return d, nil
}

// ageLimit — самая ранняя допустимая дата рождения на день now.
func ageLimit(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(-MaxAgeYears, 0, 0)
}

// phoneString приводит телефон к строке: принимаются строки и целые числа.
func phoneString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	}
	return "", false
}

// asInt распознаёт целое число в значении, пришедшем из JSON
// (json.Number при UseNumber) или собранном в коде.
func asInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}
