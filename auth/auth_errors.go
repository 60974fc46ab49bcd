package auth

import (
	errs "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/gateway"
	"github.com/jrsteele09/go-session-client/oauthmodel"
)

// User-facing messages.
const (
	MsgNoSavedToken     = "No saved token"
	MsgNoRefreshToken   = "Không có refresh token"
	MsgEmptyFromBackend = "Token hoặc thông tin tài khoản trống từ backend"
	MsgNetwork          = "Không thể kết nối tới máy chủ, vui lòng thử lại"
	MsgSessionExpired   = "Phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại"
	MsgSessionChanged   = "Phiên đăng nhập đã thay đổi, vui lòng thử lại"
	MsgStoreWrite       = "Không thể lưu phiên đăng nhập"
	MsgMissingCode      = "Thiếu mã đăng nhập"
	MsgLoginFailed      = "Đăng nhập thất bại"
)

// UserMessage translates an error from the gateway or store into display text.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errs.Is(err, errs.ErrNoRefreshToken):
		return MsgNoRefreshToken
	case errs.Is(err, errs.ErrNoSavedToken):
		return MsgNoSavedToken
	case errs.Is(err, errs.ErrMalformedResponse):
		return MsgEmptyFromBackend
	case errs.Is(err, errs.ErrNetwork):
		return MsgNetwork
	case errs.Is(err, errs.ErrSessionSuperseded):
		return MsgSessionChanged
	case errs.Is(err, errs.ErrStoreWrite):
		return MsgStoreWrite
	case errs.Is(err, oauthmodel.ErrMissingCode), errs.Is(err, oauthmodel.ErrMissingRedirectURI):
		return MsgMissingCode
	}

	if rejected, ok := gateway.IsRejected(err); ok && rejected.Message != "" {
		return rejected.Message
	}
	return MsgLoginFailed
}
