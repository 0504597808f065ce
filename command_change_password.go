package users

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type ChangePasswordMessage struct {
	User        *User  `json:"-"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (e ChangePasswordMessage) Type() string { return "user.change_password" }

// ChangePasswordHandler rotates a user's password after re-verifying the
// current one. Outstanding tokens stay valid until they expire.
type ChangePasswordHandler struct {
	repo   RepositoryManager
	policy PasswordPolicy
	logger Logger
}

func NewChangePasswordHandler(repo RepositoryManager, policy *PasswordPolicy) *ChangePasswordHandler {
	p := DefaultPasswordPolicy()
	if policy != nil {
		p = *policy
	}
	return &ChangePasswordHandler{
		repo:   repo,
		policy: p,
		logger: defLogger{},
	}
}

func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	if event.User == nil {
		return goerrors.New("change password requires a user", goerrors.CategoryBadInput)
	}

	if err := ComparePasswordAndHash(event.OldPassword, event.User.PasswordHash); err != nil {
		// wrong current password on an authenticated request is a
		// validation failure, not an authentication one
		return ValidationError("old_password", "current password is incorrect")
	}

	if err := h.policy.Validate(event.NewPassword); err != nil {
		return ValidationError("new_password", err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.NewPassword)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		return h.repo.Users().UpdatePasswordTx(ctx, tx, event.User.ID, hash)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "password change transaction failed")
	}

	return nil
}
