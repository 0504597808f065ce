package users

import (
	stderrs "errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/nyaruka/phonenumbers"
)

// RouteRegistrar is the surface we need from the router to mount account
// endpoints. Satisfied by router.Router implementations.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, middleware ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, middleware ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, middleware ...router.MiddlewareFunc) router.RouteInfo
}

// RegisterAccountRoutes mounts the account endpoints. Register and login are
// public, the profile group sits behind the gate middleware.
func RegisterAccountRoutes(app RouteRegistrar, gate router.MiddlewareFunc, opts ...AccountControllerOption) {
	controller := NewAccountController(opts...)

	app.Post(controller.Routes.Register, controller.Register).
		SetName("account.register")

	app.Post(controller.Routes.Login, controller.Login).
		SetName("account.login")

	app.Put(controller.Routes.ChangePassword, controller.ChangePassword, gate).
		SetName("account.change-password")

	app.Get(controller.Routes.Profile, controller.ProfileShow, gate).
		SetName("account.profile")

	app.Put(controller.Routes.ProfileUpdate, controller.ProfileUpdate, gate).
		SetName("account.profile-update")
}

type AccountControllerRoutes struct {
	Register       string
	Login          string
	ChangePassword string
	Profile        string
	ProfileUpdate  string
}

type AccountController struct {
	Debug    bool
	Logger   Logger
	Repo     RepositoryManager
	Auther   Authenticator
	Policy   *PasswordPolicy
	Notifier RegistrationNotifier
	Routes   *AccountControllerRoutes
}

type AccountControllerOption func(*AccountController) *AccountController

func WithControllerRepo(repo RepositoryManager) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Auther = auther
		return c
	}
}

func WithControllerPolicy(policy *PasswordPolicy) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Policy = policy
		return c
	}
}

func WithControllerNotifier(notifier RegistrationNotifier) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Notifier = notifier
		return c
	}
}

func WithControllerLogger(logger Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Logger = logger
		return c
	}
}

func WithControllerDebug(debug bool) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Debug = debug
		return c
	}
}

func NewAccountController(opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger: defLogger{},
		Routes: &AccountControllerRoutes{
			Register:       "/register",
			Login:          "/login",
			ChangePassword: "/profile/change-password",
			Profile:        "/profile",
			ProfileUpdate:  "/profile/update",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in account controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in account controller...")
	}

	return c
}

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AccountController) Register(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload: %v", err)
		return a.respondValidation(ctx, map[string]string{"body": "failed to parse request body"})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: %v", err)
		return a.respondValidation(ctx, FormatValidationErrorToMap(err))
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("===============================")
	}

	var record *User
	req := RegisterUserMessage{
		Email:    payload.Email,
		Name:     payload.Name,
		Password: payload.Password,
		OnResponse: func(u *User) {
			record = u
		},
	}

	handler := NewRegisterUserHandler(a.Repo, a.Policy, a.Notifier).WithLogger(a.Logger)
	if err := handler.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register user execute: %v", err)
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"success": true,
		"data":    record.Public(),
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AccountController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return a.respondValidation(ctx, map[string]string{"body": "failed to parse request body"})
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, FormatValidationErrorToMap(err))
	}

	pair, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("login failed for %s: %v", payload.Email, err)

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeInvalidCredentials {
			// unknown email and wrong password look the same to the caller
			return ctx.JSON(router.StatusBadRequest, map[string]any{
				"success": false,
				"error": map[string]any{
					"message":   ErrInvalidCredentials.Message,
					"text_code": ErrInvalidCredentials.TextCode,
				},
			})
		}

		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"data":    pair,
	})
}

// ChangePasswordRequest payload
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Validate will run validation rules
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

func (a *AccountController) ChangePassword(ctx router.Context) error {
	user, ok := FromContext(ctx.Context())
	if !ok {
		return a.respondError(ctx, ErrIdentityNotFound)
	}

	payload := new(ChangePasswordRequest)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("change password parse payload: %v", err)
		return a.respondValidation(ctx, map[string]string{"body": "failed to parse request body"})
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, FormatValidationErrorToMap(err))
	}

	handler := NewChangePasswordHandler(a.Repo, a.Policy).WithLogger(a.Logger)
	err := handler.Execute(ctx.Context(), ChangePasswordMessage{
		User:        user,
		OldPassword: payload.OldPassword,
		NewPassword: payload.NewPassword,
	})
	if err != nil {
		a.Logger.Error("change password execute: %v", err)
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
	})
}

func (a *AccountController) ProfileShow(ctx router.Context) error {
	user, ok := FromContext(ctx.Context())
	if !ok {
		return a.respondError(ctx, ErrIdentityNotFound)
	}

	profile, err := a.Repo.Profiles().GetOrCreateByUserID(ctx.Context(), user.ID)
	if err != nil {
		a.Logger.Error("profile fetch: %v", err)
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"user":    user.Public(),
			"profile": profile.Public(),
		},
	})
}

// ProfileUpdateRequest payload, nil fields stay untouched
type ProfileUpdateRequest struct {
	Bio            *string `json:"bio"`
	PhoneNumber    *string `json:"phone_number"`
	ProfilePicture *string `json:"profile_picture"`
	Location       *string `json:"location"`
}

// Validate will run validation rules
func (r ProfileUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Bio, validation.Length(0, 1000)),
		validation.Field(&r.PhoneNumber, validation.By(validatePhoneNumber)),
		validation.Field(&r.ProfilePicture, is.URL),
		validation.Field(&r.Location, validation.Length(0, 200)),
	)
}

func validatePhoneNumber(value any) error {
	// ozzo hands By rules the raw field value, here a *string
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}

	s, _ := v.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return stderrs.New("must be a valid phone number")
	}
	if !phonenumbers.IsValidNumber(num) {
		return stderrs.New("must be a valid phone number")
	}
	return nil
}

func (a *AccountController) ProfileUpdate(ctx router.Context) error {
	user, ok := FromContext(ctx.Context())
	if !ok {
		return a.respondError(ctx, ErrIdentityNotFound)
	}

	payload := new(ProfileUpdateRequest)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("profile update parse payload: %v", err)
		return a.respondValidation(ctx, map[string]string{"body": "failed to parse request body"})
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(ctx, FormatValidationErrorToMap(err))
	}

	patch := ProfilePatch{
		Bio:            payload.Bio,
		PhoneNumber:    payload.PhoneNumber,
		ProfilePicture: payload.ProfilePicture,
		Location:       payload.Location,
	}

	profile, err := a.Repo.Profiles().Patch(ctx.Context(), user.ID, patch)
	if err != nil {
		a.Logger.Error("profile update: %v", err)
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"data":    profile.Public(),
	})
}

func (a *AccountController) respondValidation(ctx router.Context, fields map[string]string) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"success": false,
		"error": map[string]any{
			"message":   "validation failed",
			"text_code": TextCodeValidation,
			"fields":    fields,
		},
	})
}

// respondError maps rich errors onto JSON responses using their embedded
// HTTP codes. Anything without a code is treated as an internal failure and
// returned as a generic 500 so internals never leak.
func (a *AccountController) respondError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Code != 0 && richErr.Category != goerrors.CategoryInternal {
		body := map[string]any{
			"message": richErr.Message,
		}
		if richErr.TextCode != "" {
			body["text_code"] = richErr.TextCode
		}
		if field, ok := richErr.Metadata["field"]; ok {
			body["fields"] = map[string]any{
				fmt.Sprintf("%v", field): richErr.Message,
			}
		}
		return ctx.JSON(richErr.Code, map[string]any{
			"success": false,
			"error":   body,
		})
	}

	return ctx.JSON(router.StatusInternalServerError, map[string]any{
		"success": false,
		"error": map[string]any{
			"message": "internal server error",
		},
	})
}
