package chat

import (
	"context"

	usermodel "LuxRelay/module/user/model"
	usersvc "LuxRelay/module/user/service"
	errs "LuxRelay/tools/errs"
	security "LuxRelay/tools/security"

	"github.com/pkg/errors"
)

// Gatekeeper 连接准入：校验令牌、确认用户存在，给连接打上 userId/role。
// 准入失败只拒绝这条连接，不碰任何在线状态。
type Gatekeeper struct {
	opts  security.Options
	users usersvc.Store
}

func NewGatekeeper(secret []byte, users usersvc.Store) *Gatekeeper {
	return &Gatekeeper{opts: security.DefaultOptions(secret), users: users}
}

// Admit 返回 (userId, role)；失败原因：
//   - 缺令牌   -> ErrCredentialRequired
//   - 令牌无效 -> ErrInvalidCredential（过期/签名不符同此）
//   - 用户不存在 -> ErrUnknownUser
func (g *Gatekeeper) Admit(ctx context.Context, token string) (userID, role string, err error) {
	if token == "" {
		return "", "", errs.ErrCredentialRequired
	}

	ident, verr := security.Verify(g.opts, token)
	if verr != nil {
		return "", "", errs.ErrInvalidCredential.WithDetail(verr.Error())
	}

	u, ferr := g.users.FindByID(ctx, ident.UserID)
	if errors.Is(ferr, usersvc.ErrNotFound) {
		return "", "", errs.ErrUnknownUser
	}
	if ferr != nil {
		// 主档暂不可用按未知用户拒绝，让客户端重试
		return "", "", errs.ErrUnknownUser.WithDetail(ferr.Error())
	}

	role = ident.Role
	if role == "" {
		role = u.Role
	}
	if role == "" {
		role = usermodel.RoleUser
	}
	return u.UserID, role, nil
}
