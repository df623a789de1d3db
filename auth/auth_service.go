package auth

import (
	"context"
	"time"

	"github.com/attendly/go-workforce-server/cache"
	"github.com/attendly/go-workforce-server/companies"
	errs "github.com/attendly/go-workforce-server/internal/errors"
	"github.com/attendly/go-workforce-server/sessions"
	"github.com/attendly/go-workforce-server/token"
	"github.com/attendly/go-workforce-server/users"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Compared for unknown emails so the missing-account path costs roughly the
// same as a real hash mismatch (no account enumeration via timing).
const enumerationDummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

const defaultBcryptCost = 12

// TokenPair is the access/refresh credential pair handed to clients.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is returned by Login and Register.
type LoginResult struct {
	TokenPair
	User *users.User `json:"user"`
}

// RegisterParams is the validated registration input.
type RegisterParams struct {
	Email     string
	Password  string
	FullName  string
	Role      users.RoleType
	CompanyID string
}

// Repos holds the persistence dependencies for the Service
type Repos struct {
	Users     users.Repo
	Companies companies.Repo
}

// Service implements credential validation and the session lifecycle:
// login, register, refresh rotation, change-password, logout.
type Service struct {
	repos      Repos
	issuer     *token.Issuer
	sessions   *sessions.Store
	userCache  *cache.UserCache
	bcryptCost int
	nowFunc    func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

// WithBcryptCost overrides the hashing cost (tests use a low cost)
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// NewService initializes a Service with required dependencies.
func NewService(repos Repos, issuer *token.Issuer, sessionStore *sessions.Store, userCache *cache.UserCache, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Companies == nil {
		return nil, errors.New("[NewService] Companies repo is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewService] token issuer is required")
	}
	if sessionStore == nil {
		return nil, errors.New("[NewService] session store is required")
	}
	if userCache == nil {
		return nil, errors.New("[NewService] user cache is required")
	}

	service := &Service{
		repos:      repos,
		issuer:     issuer,
		sessions:   sessionStore,
		userCache:  userCache,
		bcryptCost: defaultBcryptCost,
		nowFunc:    time.Now,
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// ValidateCredentials verifies an email/password pair. Unknown email and
// wrong password are indistinguishable to the caller. The active flag is
// only consulted after a successful password match, so a deactivated account
// is never revealed to someone who does not hold its password.
func (s *Service) ValidateCredentials(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(enumerationDummyHash), []byte(password))
			return nil, errs.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[ValidateCredentials] GetByEmail")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errs.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, errs.ErrAccountDeactivated
	}

	return user.Sanitized(), nil
}

// Login exchanges credentials for a token pair and starts the session.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.ValidateCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user)
}

// Register creates a user and auto-logs them in. Non-super-admin users must
// reference an existing company holding an active subscription.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*LoginResult, error) {
	if params.Role == "" {
		params.Role = users.RoleEmployee
	}
	if !params.Role.Valid() {
		return nil, errs.Validationf("unknown role %q", params.Role)
	}
	if err := users.ValidatePasswordStrength(params.Password); err != nil {
		return nil, errs.Validationf("%v", err)
	}

	if _, err := s.repos.Users.GetByEmail(ctx, params.Email); err == nil {
		return nil, errs.ErrEmailAlreadyExists
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, errors.Wrap(err, "[Register] GetByEmail")
	}

	if params.Role != users.RoleSuperAdmin {
		if params.CompanyID == "" {
			return nil, errs.ErrMissingTenant
		}
		company, err := s.repos.Companies.GetByID(ctx, params.CompanyID)
		if err != nil {
			if errors.Is(err, companies.ErrNotFound) {
				return nil, errs.ErrInvalidCompanyReference
			}
			return nil, errors.Wrap(err, "[Register] Companies.GetByID")
		}
		// Registration is stricter than the per-request tenant check: a
		// company must already hold an ACTIVE subscription to take on staff.
		if company.Subscription == nil || company.Subscription.Status != companies.SubscriptionActive {
			return nil, errs.ErrSubscriptionInactive
		}
	}

	hash, err := users.HashPassword(params.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "[Register] HashPassword")
	}

	now := s.nowFunc()
	user := &users.User{
		ID:           uuid.New().String(),
		Email:        params.Email,
		PasswordHash: hash,
		FullName:     params.FullName,
		Role:         params.Role,
		CompanyID:    params.CompanyID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, errs.ErrEmailAlreadyExists
		}
		return nil, errors.Wrap(err, "[Register] Users.Create")
	}

	// Warm the cache; best effort, persistence remains the source of truth.
	_ = s.userCache.Set(ctx, user.Sanitized())

	return s.startSession(ctx, user.Sanitized())
}

// Refresh rotates a refresh token: the presented token must be the single
// valid one in the session store, and storing the replacement immediately
// invalidates it, closing the replay window after a legitimate rotation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	payload, err := s.issuer.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return nil, err
	}

	valid, err := s.sessions.IsValid(ctx, payload.UserID, refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Refresh] sessions.IsValid")
	}
	if !valid {
		return nil, errs.ErrSessionInvalid
	}

	user, err := s.UserByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, errs.ErrSessionInvalid
		}
		return nil, errors.Wrap(err, "[Refresh] UserByID")
	}
	if !user.Active {
		return nil, errs.ErrAccountDeactivated
	}

	result, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &result.TokenPair, nil
}

// ChangePassword re-hashes the password after verifying the current one and
// invalidates the cached user record. The invalidation is not optional:
// leaving a stale entry behind is a security problem, not a freshness one.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return errs.ErrInvalidCredentials
		}
		return errors.Wrap(err, "[ChangePassword] GetByID")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return errs.ErrInvalidCredentials
	}
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return errs.Validationf("%v", err)
	}

	hash, err := users.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return errors.Wrap(err, "[ChangePassword] HashPassword")
	}
	if err := s.repos.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return errors.Wrap(err, "[ChangePassword] UpdatePassword")
	}

	if err := s.userCache.Invalidate(ctx, userID); err != nil {
		return errors.Wrap(err, "[ChangePassword] cache invalidate")
	}
	return nil
}

// Logout ends the user's session. Idempotent: a second logout succeeds.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.sessions.End(ctx, userID)
}

// UserByID is the read-through lookup: cache first, persistence on miss,
// repopulate on the way out. A cache infrastructure fault degrades to a
// direct read rather than failing the request.
func (s *Service) UserByID(ctx context.Context, userID string) (*users.User, error) {
	if cached, err := s.userCache.Get(ctx, userID); err == nil {
		return cached, nil
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, users.ErrNotFound
		}
		return nil, errors.Wrap(err, "[UserByID] GetByID")
	}

	sanitized := user.Sanitized()
	_ = s.userCache.Set(ctx, sanitized)
	return sanitized, nil
}

// SetUserActive flips the active flag and invalidates the cached record so a
// deactivated user cannot keep authenticating off a stale cache entry.
func (s *Service) SetUserActive(ctx context.Context, userID string, active bool) error {
	if err := s.repos.Users.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.ErrNotFound
		}
		return errors.Wrap(err, "[SetUserActive] SetActive")
	}
	if err := s.userCache.Invalidate(ctx, userID); err != nil {
		return errors.Wrap(err, "[SetUserActive] cache invalidate")
	}
	return nil
}

// UpdateUserRole changes a user's role and invalidates the cached record.
func (s *Service) UpdateUserRole(ctx context.Context, userID string, role users.RoleType) error {
	if !role.Valid() {
		return errs.Validationf("unknown role %q", role)
	}
	if err := s.repos.Users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.ErrNotFound
		}
		return errors.Wrap(err, "[UpdateUserRole] UpdateRole")
	}
	if err := s.userCache.Invalidate(ctx, userID); err != nil {
		return errors.Wrap(err, "[UpdateUserRole] cache invalidate")
	}
	return nil
}

func (s *Service) startSession(ctx context.Context, user *users.User) (*LoginResult, error) {
	payload := token.Payload{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	}

	accessToken, err := s.issuer.IssueAccess(payload)
	if err != nil {
		return nil, errors.Wrap(err, "[startSession] IssueAccess")
	}
	refreshToken, err := s.issuer.IssueRefresh(payload)
	if err != nil {
		return nil, errors.Wrap(err, "[startSession] IssueRefresh")
	}

	if err := s.sessions.Start(ctx, user.ID, refreshToken); err != nil {
		return nil, errors.Wrap(err, "[startSession] sessions.Start")
	}

	return &LoginResult{
		TokenPair: TokenPair{AccessToken: accessToken, RefreshToken: refreshToken},
		User:      user,
	}, nil
}
