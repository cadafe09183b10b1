package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestCheckAuth_User(t *testing.T) {
	req := &MethodRequest{
		Account: strp("horns&hoofs"),
		Login:   strp("h&f"),
		Token:   strp(userToken("horns&hoofs", "h&f")),
	}
	assert.True(t, CheckAuth(req, fixedNow))

	req.Token = strp(userToken("horns&hoofs", "h&g"))
	assert.False(t, CheckAuth(req, fixedNow))
}

func TestCheckAuth_UserWithoutAccount(t *testing.T) {
	req := &MethodRequest{Login: strp("h&f"), Token: strp(userToken("", "h&f"))}

	assert.False(t, CheckAuth(req, fixedNow))
}

func TestCheckAuth_EmptyAccount(t *testing.T) {
	req := &MethodRequest{Account: strp(""), Login: strp("h&f"), Token: strp(userToken("", "h&f"))}

	assert.True(t, CheckAuth(req, fixedNow))
}

func TestCheckAuth_Admin(t *testing.T) {
	req := &MethodRequest{Login: strp(AdminLogin), Token: strp(adminToken())}

	assert.True(t, req.IsAdmin())
	assert.True(t, CheckAuth(req, fixedNow), "account is not needed for admin")
	assert.True(t, CheckAuth(req, time.Date(2024, time.March, 15, 13, 59, 59, 0, time.Local)), "same hour")
	assert.False(t, CheckAuth(req, fixedNow.Add(time.Hour)), "token expires with the hour")
}

func TestCheckAuth_NoToken(t *testing.T) {
	req := &MethodRequest{Account: strp("a"), Login: strp("b")}

	assert.False(t, CheckAuth(req, fixedNow))
}

func TestExpectedToken(t *testing.T) {
	token, ok := ExpectedToken(&MethodRequest{Account: strp("a"), Login: strp("b")}, fixedNow)

	assert.True(t, ok)
	assert.Equal(t, sha512Hex("abOtus"), token)
	assert.Len(t, token, 128)
}
