package api

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

const (
	// Salt — общая соль для обычных аккаунтов.
	Salt = "Otus"
	// AdminLogin — логин администратора.
	AdminLogin = "admin"
	// AdminSalt — соль административного токена.
	AdminSalt = "42"
)

// CheckAuth сверяет token с ожидаемым дайджестом SHA-512.
//
// Для администратора дайджест считается от текущего часа (ГГГГММДДЧЧ)
// и AdminSalt, то есть токен меняется раз в час и от клиента не зависит.
// Для остальных — от account + login + Salt. Если account или login
// не переданы, авторизация не проходит.
func CheckAuth(r *MethodRequest, now time.Time) bool {
	if r.Token == nil {
		return false
	}

	digest, ok := ExpectedToken(r, now)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(digest), []byte(*r.Token)) == 1
}

// ExpectedToken возвращает токен, который должен прислать клиент.
// ok=false, если из конверта его не вычислить.
func ExpectedToken(r *MethodRequest, now time.Time) (string, bool) {
	var input string
	if r.IsAdmin() {
		input = now.Format("2006010215") + AdminSalt
	} else {
		if r.Account == nil || r.Login == nil {
			return "", false
		}
		input = *r.Account + *r.Login + Salt
	}

	sum := sha512.Sum512([]byte(input))
	return hex.EncodeToString(sum[:]), true
}
