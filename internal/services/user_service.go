package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/auth"
	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/metrics"
	"github.com/baharkarakas/librarium/internal/models"
	repo "github.com/baharkarakas/librarium/internal/repository"
	"github.com/baharkarakas/librarium/internal/storage/photos"
	"github.com/baharkarakas/librarium/internal/validate"
)

const (
	MsgSuperuserStaff    = "Superuser must have is_staff=True."
	MsgSuperuserFlag     = "Superuser must have is_superuser=True."
	MsgPasswordMismatch  = "The two password fields didn't match."
	MsgUsernameTaken     = "A user with that username already exists."
	msgInvalidCredential = "invalid username or password"
)

type RegisterInput struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Password2   string  `json:"password2"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth"`
}

// SuperuserInput is the privileged creation path. Nil flags default to true;
// an explicit false is rejected.
type SuperuserInput struct {
	Username    string
	Email       string
	Password    string
	IsStaff     *bool
	IsSuperuser *bool
}

type ProfileInput struct {
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth"`
}

type UserService struct {
	r        repo.Users
	tm       *auth.TokenManager
	photos   photos.Store
	maxPhoto int64
	rec      recorder
	now      func() time.Time
}

func parseDOB(raw *string, fe *validate.Errs) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(*raw))
	if err != nil {
		fe.Addf("date_of_birth", "Date has wrong format. Use YYYY-MM-DD.")
		return nil
	}
	return &d
}

func checkPassword(pw string, fe *validate.Errs) {
	fe.Add(validate.MinLen("password", pw, auth.MinPasswordLen, ""))
	if len(pw) > auth.MaxPasswordBytes {
		fe.Addf("password", "ensure this field has no more than %d bytes", auth.MaxPasswordBytes)
	}
}

func (s *UserService) create(ctx context.Context, u models.User, password string, role models.Role, fe validate.Errs) (models.User, error) {
	fe = append(fe, u.Validate(s.now())...)
	if len(fe) > 0 {
		return models.User{}, errs.Invalid(fe)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = hash
	out, err := s.r.Create(ctx, u, role)
	if errors.Is(err, repo.ErrConflict) {
		return models.User{}, errs.InvalidField("username", MsgUsernameTaken)
	}
	if err != nil {
		return models.User{}, err
	}
	s.rec.record(ctx, access.Anonymous(), "user", out.ID, models.AuditCreated, map[string]any{"role": string(role)})
	return out, nil
}

// Register creates a regular user with a Member profile.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	var fe validate.Errs
	checkPassword(in.Password, &fe)
	if in.Password != in.Password2 {
		fe.Addf("password2", MsgPasswordMismatch)
	}
	u := models.User{
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.TrimSpace(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	u.DateOfBirth = parseDOB(in.DateOfBirth, &fe)
	return s.create(ctx, u, in.Password, models.RoleMember, fe)
}

// CreateSuperuser is used by the CLI only. The user gets the Admin role.
func (s *UserService) CreateSuperuser(ctx context.Context, in SuperuserInput) (models.User, error) {
	if in.IsStaff != nil && !*in.IsStaff {
		return models.User{}, errs.InvalidField("is_staff", MsgSuperuserStaff)
	}
	if in.IsSuperuser != nil && !*in.IsSuperuser {
		return models.User{}, errs.InvalidField("is_superuser", MsgSuperuserFlag)
	}
	var fe validate.Errs
	checkPassword(in.Password, &fe)
	u := models.User{
		Username:    strings.TrimSpace(in.Username),
		Email:       strings.TrimSpace(in.Email),
		IsStaff:     true,
		IsSuperuser: true,
	}
	return s.create(ctx, u, in.Password, models.RoleAdmin, fe)
}

func (s *UserService) Login(ctx context.Context, username, password string) (auth.Pair, error) {
	u, err := s.r.GetByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		err = auth.VerifyPassword(password, u.PasswordHash)
	}
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failed").Inc()
		if errors.Is(err, repo.ErrNotFound) || auth.IsMismatch(err) {
			return auth.Pair{}, errs.Unauthorized(msgInvalidCredential)
		}
		return auth.Pair{}, err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return s.tm.GeneratePair(u.ID, u.Username)
}

// Refresh trades a valid refresh token for a new pair, provided the user still exists.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (auth.Pair, error) {
	c, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return auth.Pair{}, errs.Unauthorized("invalid refresh token")
	}
	u, err := s.r.GetByID(ctx, c.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return auth.Pair{}, errs.Unauthorized("user no longer exists")
	}
	if err != nil {
		return auth.Pair{}, err
	}
	return s.tm.GeneratePair(u.ID, u.Username)
}

// Principal loads the user and their grants fresh for one request.
func (s *UserService) Principal(ctx context.Context, userID int64) (access.Principal, error) {
	u, err := s.r.GetByID(ctx, userID)
	if err != nil {
		return access.Principal{}, err
	}
	perms, err := s.r.Permissions(ctx, userID)
	if err != nil {
		return access.Principal{}, err
	}
	return access.NewPrincipal(u, perms), nil
}

func (s *UserService) Profile(ctx context.Context, p access.Principal) (models.User, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return models.User{}, err
	}
	u, err := s.r.GetByID(ctx, p.UserID)
	return u, notFound(err, "user")
}

func (s *UserService) UpdateProfile(ctx context.Context, p access.Principal, in ProfileInput) (models.User, error) {
	u, err := s.Profile(ctx, p)
	if err != nil {
		return models.User{}, err
	}
	var fe validate.Errs
	if in.Email != nil {
		u.Email = strings.TrimSpace(*in.Email)
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.DateOfBirth != nil {
		u.DateOfBirth = parseDOB(in.DateOfBirth, &fe)
	}
	fe = append(fe, u.Validate(s.now())...)
	if len(fe) > 0 {
		return models.User{}, errs.Invalid(fe)
	}
	out, err := s.r.Update(ctx, u)
	if err != nil {
		return models.User{}, notFound(err, "user")
	}
	s.rec.record(ctx, p, "user", out.ID, models.AuditUpdated, nil)
	return out, nil
}

// UploadPhoto stores data as the caller's profile photo. The type is sniffed
// from the bytes, not taken from the client.
func (s *UserService) UploadPhoto(ctx context.Context, p access.Principal, data []byte) (models.User, error) {
	u, err := s.Profile(ctx, p)
	if err != nil {
		return models.User{}, err
	}
	if len(data) == 0 {
		return models.User{}, errs.InvalidField("photo", validate.MsgRequired)
	}
	if s.maxPhoto > 0 && int64(len(data)) > s.maxPhoto {
		return models.User{}, errs.InvalidField("photo", "file too large")
	}
	ct := http.DetectContentType(data)
	if !photos.Accepted(ct) {
		return models.User{}, errs.InvalidField("photo", "upload a valid image (jpeg, png, gif or webp)")
	}
	key, err := photos.Key(u.ID, ct)
	if err != nil {
		return models.User{}, err
	}
	ref, err := s.photos.Put(ctx, key, ct, bytes.NewReader(data))
	if err != nil {
		return models.User{}, err
	}
	u.ProfilePhoto = &ref
	out, err := s.r.Update(ctx, u)
	if err != nil {
		return models.User{}, notFound(err, "user")
	}
	s.rec.record(ctx, p, "user", out.ID, models.AuditUpdated, map[string]any{"profile_photo": ref})
	return out, nil
}

func (s *UserService) SetRole(ctx context.Context, p access.Principal, userID int64, role string) (models.User, error) {
	if err := access.RequireSuperuser(p); err != nil {
		return models.User{}, err
	}
	return s.setRole(ctx, p, userID, role)
}

func (s *UserService) setRole(ctx context.Context, p access.Principal, userID int64, role string) (models.User, error) {
	if _, err := s.r.GetByID(ctx, userID); err != nil {
		return models.User{}, notFound(err, "user")
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return models.User{}, errs.InvalidField("role", "must be one of Admin, Librarian, Member")
	}
	if err := s.r.SetRole(ctx, userID, r); err != nil {
		return models.User{}, notFound(err, "user")
	}
	s.rec.record(ctx, p, "user", userID, models.AuditUpdated, map[string]any{"role": string(r)})
	u, err := s.r.GetByID(ctx, userID)
	return u, notFound(err, "user")
}

// Delete removes the user with their posts, comments, grants and profile.
// Superuser only.
func (s *UserService) Delete(ctx context.Context, p access.Principal, userID int64) error {
	if err := access.RequireSuperuser(p); err != nil {
		return err
	}
	return s.delete(ctx, p, userID)
}

func (s *UserService) delete(ctx context.Context, p access.Principal, userID int64) error {
	u, err := s.r.GetByID(ctx, userID)
	if err != nil {
		return notFound(err, "user")
	}
	if err := s.r.Delete(ctx, userID); err != nil {
		return notFound(err, "user")
	}
	s.rec.record(ctx, p, "user", userID, models.AuditDeleted, map[string]any{"username": u.Username})
	return nil
}

// Grant gives userID a named permission. Superuser only.
func (s *UserService) Grant(ctx context.Context, p access.Principal, userID int64, perm string) ([]string, error) {
	if err := access.RequireSuperuser(p); err != nil {
		return nil, err
	}
	return s.grant(ctx, p, userID, perm, true)
}

func (s *UserService) Revoke(ctx context.Context, p access.Principal, userID int64, perm string) ([]string, error) {
	if err := access.RequireSuperuser(p); err != nil {
		return nil, err
	}
	return s.grant(ctx, p, userID, perm, false)
}

func (s *UserService) grant(ctx context.Context, p access.Principal, userID int64, perm string, on bool) ([]string, error) {
	if _, err := s.r.GetByID(ctx, userID); err != nil {
		return nil, notFound(err, "user")
	}
	if !access.IsKnown(perm) {
		return nil, errs.InvalidField("perm", "unknown permission "+perm)
	}
	var err error
	details := map[string]any{"granted": perm}
	if on {
		err = s.r.Grant(ctx, userID, perm)
	} else {
		err = s.r.Revoke(ctx, userID, perm)
		details = map[string]any{"revoked": perm}
	}
	if err != nil {
		return nil, notFound(err, "permission")
	}
	s.rec.record(ctx, p, "user", userID, models.AuditUpdated, details)
	return s.r.Permissions(ctx, userID)
}

// GrantByUsername and SetRoleByUsername serve the operator CLI, which runs
// with full trust and no request principal.
func (s *UserService) GrantByUsername(ctx context.Context, username, perm string) ([]string, error) {
	u, err := s.r.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return s.grant(ctx, access.Anonymous(), u.ID, perm, true)
}

func (s *UserService) DeleteByUsername(ctx context.Context, username string) error {
	u, err := s.r.GetByUsername(ctx, username)
	if err != nil {
		return notFound(err, "user")
	}
	return s.delete(ctx, access.Anonymous(), u.ID)
}

func (s *UserService) SetRoleByUsername(ctx context.Context, username, role string) (models.User, error) {
	u, err := s.r.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, notFound(err, "user")
	}
	return s.setRole(ctx, access.Anonymous(), u.ID, role)
}
