package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uint) error
	UpdateEmailVerification(ctx context.Context, id uint, isVerified bool) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) (err error)
}

// TokenRepository contract interface. A nil TokenRepository disables
// server-side token tracking; JWTs are then trusted until they expire.
type TokenRepository interface {
	StoreToken(ctx context.Context, session domain.TokenSession, ttl time.Duration) error
	ValidateToken(ctx context.Context, token string) (string, error)
	DeleteToken(ctx context.Context, userID, token string) error
	RevokeUserTokens(ctx context.Context, userID string) error
}

type Options struct {
	EmailVerificationKey     string
	DeploymentUrl            string
	RequireEmailVerification bool
}

type userService struct {
	userRepo  UserRepository
	validate  *validator.Validate
	notifRepo NotificationRepository
	tokenRepo TokenRepository
	opts      Options
	now       func() time.Time
}

const (
	verificationCodeTTL      = 30
	SubjectRegisterAccount   = "Activate your AgriPricePredict account"
	EmailBodyRegisterAccount = `Hello %v, activate your account by opening the link below</br></br>%v</br>note: the link is valid for %v minutes`
)

func NewUserService(
	userRepo UserRepository,
	validate *validator.Validate,
	notifRepo NotificationRepository,
	tokenRepo TokenRepository,
	opts Options,
) *userService {
	return &userService{
		userRepo:  userRepo,
		validate:  validate,
		notifRepo: notifRepo,
		tokenRepo: tokenRepo,
		opts:      opts,
		now:       time.Now,
	}
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var validRoles = map[string]bool{
	RoleUser:  true,
	RoleAdmin: true,
}

func (s *userService) Register(ctx context.Context, user *domain.User) (domain.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if err := s.validate.Var(user.Username, "required,max=50"); err != nil {
		logger.Error("Invalid username", err)
		return domain.User{}, fmt.Errorf("%w: invalid username", domain.ErrInvalidInput)
	}

	if err := s.validate.Var(user.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return domain.User{}, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}

	if err := s.validate.Var(user.Password, "required,min=6"); err != nil {
		logger.Error("Invalid user password", err)
		return domain.User{}, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrInvalidInput)
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, user.Email)
	if err == nil && existingUser.ID > 0 {
		logger.Error("Email already exists")
		return domain.User{}, domain.ErrEmailExists
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	newUser := domain.User{
		Username:   user.Username,
		Email:      user.Email,
		Password:   string(passwordHash),
		IsVerified: !s.opts.RequireEmailVerification,
		Role:       RoleUser,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, err
	}

	if s.opts.RequireEmailVerification {
		s.sendVerificationEmail(newUser)
	}

	newUser.Password = ""
	return newUser, nil
}

// sendVerificationEmail is best effort: the account exists either way and a
// failed mail is only logged.
func (s *userService) sendVerificationEmail(user domain.User) {
	expAt := s.now().Add(time.Minute * verificationCodeTTL)

	code, err := s.verificationCode(user.Email, expAt)
	if err != nil {
		logger.Error("Failed to build verification code", err)
		return
	}
	activationLink := s.opts.DeploymentUrl + "/api/v1/users/email-verification/" + code

	err = s.notifRepo.SendEmail(user.Username, user.Email, SubjectRegisterAccount, fmt.Sprintf(EmailBodyRegisterAccount, user.Username, activationLink, verificationCodeTTL))
	if err != nil {
		logger.Warn("Failed to send verification email", err)
	}
}

func (s *userService) verificationCode(email string, expAt time.Time) (string, error) {
	verificationCode := fmt.Sprintf("%v|%v", email, expAt.Unix())
	verificationCodeEncrypt, err := goshortcute.AESCBCEncrypt([]byte(verificationCode), []byte(s.opts.EmailVerificationKey))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt verification code: %w", err)
	}

	return goshortcute.StringtoBase64Encode(verificationCodeEncrypt), nil
}

func (s *userService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		logger.Error("Invalid user credentials", err)
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	if !utils.CheckPassword(password, user.Password) {
		logger.Error("User password incorrect", "user_id", user.ID)
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	if !user.IsVerified {
		logger.Error("Email address has not been verified", "user_id", user.ID)
		return "", domain.User{}, domain.ErrEmailNotVerified
	}

	token, err := s.issueToken(ctx, user, ipAddress, userAgent)
	if err != nil {
		return "", domain.User{}, err
	}

	user.Password = ""
	return token, user, nil
}

func (s *userService) issueToken(ctx context.Context, user domain.User, ipAddress, userAgent string) (string, error) {
	userIdStr := strconv.FormatUint(uint64(user.ID), 10)
	token, err := utils.GenerateJWT(userIdStr, user.Role)
	if err != nil {
		logger.Error("Failed to generated token", err)
		return "", errors.New("failed to generate token")
	}

	if s.tokenRepo == nil {
		return token, nil
	}

	ttl := utils.TokenTTL()
	issuedAt := s.now()
	session := domain.TokenSession{
		UserID:    userIdStr,
		Role:      user.Role,
		Token:     token,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(ttl),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := s.tokenRepo.StoreToken(ctx, session, ttl); err != nil {
		logger.Error("Failed to store token", err)
		return "", errors.New("failed to store token")
	}

	return token, nil
}

// ValidateTokenFromRedis returns the user id the token store holds for the
// token. Without a token store every well-formed JWT is accepted.
func (s *userService) ValidateTokenFromRedis(ctx context.Context, token string) (string, error) {
	if s.tokenRepo == nil {
		claims, err := utils.ParseJWT(token)
		if err != nil {
			return "", err
		}
		return claims.UserID, nil
	}

	return s.tokenRepo.ValidateToken(ctx, token)
}

// RefreshToken swaps a still valid token for a new one.
func (s *userService) RefreshToken(ctx context.Context, oldToken, ipAddress, userAgent string) (string, domain.User, error) {
	claims, err := utils.ParseJWT(oldToken)
	if err != nil {
		logger.Error("Failed to parse token for refresh", err)
		return "", domain.User{}, domain.ErrInvalidToken
	}

	if s.tokenRepo != nil {
		userID, err := s.tokenRepo.ValidateToken(ctx, oldToken)
		if err != nil || userID != claims.UserID {
			logger.Error("Token not found in store", err)
			return "", domain.User{}, domain.ErrInvalidToken
		}
	}

	id, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return "", domain.User{}, domain.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, uint(id))
	if err != nil {
		logger.Error("User for token not found", err)
		return "", domain.User{}, domain.ErrInvalidToken
	}

	if s.tokenRepo != nil {
		if err := s.tokenRepo.DeleteToken(ctx, claims.UserID, oldToken); err != nil {
			logger.Warn("Failed to revoke old token", err)
		}
	}

	token, err := s.issueToken(ctx, user, ipAddress, userAgent)
	if err != nil {
		return "", domain.User{}, err
	}

	user.Password = ""
	return token, user, nil
}

func (s *userService) Logout(ctx context.Context, userID uint, token string) error {
	if s.tokenRepo == nil {
		return nil
	}

	if err := s.tokenRepo.DeleteToken(ctx, strconv.FormatUint(uint64(userID), 10), token); err != nil {
		logger.Error("Failed to delete token", err)
		return errors.New("failed to logout")
	}

	return nil
}

func (s *userService) VerifyEmail(ctx context.Context, verificationCodeEncrypt string) error {
	strDecode := goshortcute.StringtoBase64Decode(verificationCodeEncrypt)
	verificationCodeDecrypt, err := goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(s.opts.EmailVerificationKey))
	if err != nil {
		logger.Error("Verifying email error", err)
		return domain.ErrVerificationLink
	}

	verificationCode := strings.Split(verificationCodeDecrypt, "|")
	if len(verificationCode) != 2 {
		logger.Error("Verifying email error: malformed code")
		return domain.ErrVerificationLink
	}

	email := verificationCode[0]
	ts, err := strconv.ParseInt(verificationCode[1], 10, 64)
	if err != nil {
		logger.Error("Verifying email error", err)
		return domain.ErrVerificationLink
	}
	if s.now().After(time.Unix(ts, 0)) {
		return domain.ErrVerificationLink
	}

	getUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Verifying email error", err)
		return errors.New("failed to get user by email")
	}

	if getUser.IsVerified {
		logger.Warn("Email already verified", "user_id", getUser.ID)
		return domain.ErrVerificationLink
	}

	if err := s.userRepo.UpdateEmailVerification(ctx, getUser.ID, true); err != nil {
		logger.Error("Verify email err", err)
		return err
	}

	return nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

// GetAllUsers retrieves all users
func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to get all users", err)
		return nil, err
	}

	for i := range users {
		users[i].Password = ""
	}

	return users, nil
}

// UpdateUser changes username, password or role. Empty fields are left as
// they are.
func (s *userService) UpdateUser(ctx context.Context, id uint, updateData *domain.User) (domain.User, error) {
	existingUser, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("User not found for update", err)
		return domain.User{}, err
	}

	if username := strings.TrimSpace(updateData.Username); username != "" {
		if err := s.validate.Var(username, "max=50"); err != nil {
			return domain.User{}, fmt.Errorf("%w: invalid username", domain.ErrInvalidInput)
		}
		existingUser.Username = username
	}

	revoke := false
	if updateData.Password != "" {
		if err := s.validate.Var(updateData.Password, "required,min=6"); err != nil {
			logger.Error("Invalid password", err)
			return domain.User{}, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrInvalidInput)
		}

		passwordHash, err := utils.HashPassword(updateData.Password)
		if err != nil {
			logger.Error("Failed to hash password", err)
			return domain.User{}, errors.New("failed to hash password")
		}
		existingUser.Password = string(passwordHash)
		revoke = true
	}

	if updateData.Role != "" {
		if !validRoles[updateData.Role] {
			return domain.User{}, fmt.Errorf("%w: invalid role", domain.ErrInvalidInput)
		}
		revoke = revoke || existingUser.Role != updateData.Role
		existingUser.Role = updateData.Role
	}

	if err := s.userRepo.Update(ctx, &existingUser); err != nil {
		logger.Error("Failed to update user", err)
		return domain.User{}, err
	}

	// issued tokens carry the old role
	if revoke {
		s.revokeTokens(ctx, existingUser.ID)
	}

	existingUser.Password = ""
	return existingUser, nil
}

// DeleteUser soft deletes a user
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		logger.Error("User not found for deletion", err)
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete user", err)
		return err
	}

	s.revokeTokens(ctx, id)
	return nil
}

func (s *userService) revokeTokens(ctx context.Context, id uint) {
	if s.tokenRepo == nil {
		return
	}
	if err := s.tokenRepo.RevokeUserTokens(ctx, strconv.FormatUint(uint64(id), 10)); err != nil {
		logger.Warn("Failed to revoke user tokens", "user_id", id, "error", err)
	}
}

// UserRole reads the stored role, so a demoted or deleted account loses
// admin rights before its token expires.
func (s *userService) UserRole(ctx context.Context, id uint) (string, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// EnsureAdmin creates the bootstrap admin account, or promotes the existing
// account with that email.
func (s *userService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing.ID > 0 {
		if existing.Role == RoleAdmin {
			return nil
		}
		existing.Role = RoleAdmin
		if err := s.userRepo.Update(ctx, &existing); err != nil {
			logger.Error("Failed to promote admin", err)
			return err
		}
		logger.Info("Existing user promoted to admin", "user_id", existing.ID)
		return nil
	}

	if err := s.validate.Var(password, "required,min=6"); err != nil {
		return fmt.Errorf("%w: admin password must be at least 6 characters", domain.ErrInvalidInput)
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return errors.New("failed to hash password")
	}

	admin := domain.User{
		Username:   username,
		Email:      email,
		Password:   string(passwordHash),
		IsVerified: true,
		Role:       RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, &admin); err != nil {
		logger.Error("Failed to create admin", err)
		return err
	}

	logger.Info("Admin account created", "user_id", admin.ID)
	return nil
}
