package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// ProvisionUserMessage creates a portal user with a hashed password. Admin
// accounts are provisioned out of band; there is no self registration.
type ProvisionUserMessage struct {
	Userid    string   `json:"userid"`
	Name      string   `json:"name"`
	Role      UserRole `json:"role"`
	Password  string   `json:"password"`
	UseHashid bool
}

func (e ProvisionUserMessage) Type() string { return "user.provision" }

type ProvisionUserHandler struct {
	repo RepositoryManager
}

func NewProvisionUserHandler(repo RepositoryManager) *ProvisionUserHandler {
	return &ProvisionUserHandler{repo: repo}
}

func (h *ProvisionUserHandler) Execute(ctx context.Context, event ProvisionUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user provisioning",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ProvisionUserHandler) execute(ctx context.Context, event ProvisionUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Userid = event.Userid
		user.Name = event.Name
		user.Role = event.Role
		if user.Role == "" {
			user.Role = RoleViewer
		}
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Userid); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user provisioning transaction failed")
	}

	return nil
}
