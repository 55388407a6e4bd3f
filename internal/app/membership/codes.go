// internal/app/membership/codes.go
package membership

import (
	"context"
	"crypto/rand"
	"strings"

	groupstore "github.com/artom-sites/choirhub/internal/app/store/groups"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// codeAlphabet omits the lookalikes 0/O/1/I so codes survive being read
// aloud at a rehearsal.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of generated invite codes.
const CodeLength = 8

// GenerateCode returns a new random invite code. Codes are not globally
// unique; resolution order makes a collision stable rather than harmful.
func GenerateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(CodeLength)
	for _, c := range buf {
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}

// resolvedCode is the outcome of invite-code resolution: the group, the
// role the code grants, and any permissions carried by an admin code.
type resolvedCode struct {
	group       *models.Group
	role        string
	permissions []string
}

// resolveCode maps an invite code to a group and granted role. Lookup
// order is fixed: member codes, then regent codes, then the bounded
// admin-code scan. The first hit wins, which makes cross-tier collisions
// deterministic.
func (e *Engine) resolveCode(ctx context.Context, code string) (*resolvedCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperr.InvalidArgumentf("code is required")
	}

	if g, err := e.groups.FindByMemberCode(ctx, code); err == nil {
		return &resolvedCode{group: g, role: models.RoleMember}, nil
	} else if err != groupstore.ErrNotFound {
		return nil, apperr.Internalf("resolve member code: %v", err)
	}

	if g, err := e.groups.FindByRegentCode(ctx, code); err == nil {
		return &resolvedCode{group: g, role: models.RoleRegent}, nil
	} else if err != groupstore.ErrNotFound {
		return nil, apperr.Internalf("resolve regent code: %v", err)
	}

	g, ac, err := e.groups.FindByAdminCode(ctx, code)
	if err == groupstore.ErrNotFound {
		return nil, apperr.NotFoundf("invite code not recognized")
	}
	if err != nil {
		return nil, apperr.Internalf("resolve admin code: %v", err)
	}
	return &resolvedCode{group: g, role: models.RoleMember, permissions: ac.Permissions}, nil
}
