package services

import (
	"errors"
	"strings"
	"unicode"

	"github.com/badoux/checkmail"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gastos/internal/database"
	apperrors "gastos/internal/errors"
	"gastos/internal/models"
)

const minPasswordLength = 8

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user. In the same transaction the user gets the
// regular role and the global default categories are seeded.
func (s *userService) CreateUser(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "username", "Este campo es requerido.")
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.checkAvailable("", username, email); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:          username,
		Email:             email,
		Password:          hashedPassword,
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		PreferredCurrency: "USD",
		IsActive:          true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return afterRegistration(tx, user)
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, s.duplicateError(username)
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// afterRegistration assigns the regular role when the user has none and
// seeds the default categories. Running it twice changes nothing.
func afterRegistration(tx *gorm.DB, user *models.User) error {
	if user.RoleID == nil {
		var role models.Role
		err := tx.Where("name = ?", models.RoleUser).First(&role).Error
		switch {
		case err == nil:
			if err := tx.Model(user).Update("role_id", role.ID).Error; err != nil {
				return err
			}
			user.RoleID = &role.ID
			user.Role = &role
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
	}
	return seedDefaultCategories(tx)
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Role").
		Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user and its role by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Role").Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin authenticates by username or email.
func (s *userService) AttemptLogin(login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.Preload("Role").
		Where("is_active = ? AND (username = ? OR email = ?)", true, login, strings.ToLower(login)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !s.VerifyPassword(&user, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &user, nil
}

// UpdateProfile applies a partial profile update. Role and registration
// timestamp are never changed here.
func (s *userService) UpdateProfile(userID string, input ProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	newUsername, newEmail := "", ""
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, apperrors.WithField(apperrors.ErrInvalidInput, "username", "Este campo no puede estar vacío.")
		}
		if username != user.Username {
			newUsername = username
			updates["username"] = username
		}
	}
	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			newEmail = email
			updates["email"] = email
		}
	}
	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if input.PreferredCurrency != nil {
		updates["preferred_currency"] = strings.ToUpper(*input.PreferredCurrency)
	}

	if err := s.checkAvailable(user.ID, newUsername, newEmail); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return nil, s.duplicateError(newUsername)
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetUserByID(user.ID)
}

// checkAvailable returns a conflict when username or email is taken by a
// user other than excludeID. Empty values are skipped.
func (s *userService) checkAvailable(excludeID, username, email string) error {
	exists := func(column, value string) (bool, error) {
		q := s.db.Model(&models.User{}).Where(column+" = ?", value)
		if excludeID != "" {
			q = q.Where("id <> ?", excludeID)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}

	if username != "" {
		taken, err := exists("username", username)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if taken {
			return apperrors.ErrDuplicateUsername
		}
	}
	if email != "" {
		taken, err := exists("email", email)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if taken {
			return apperrors.ErrDuplicateEmail
		}
	}
	return nil
}

// duplicateError tells which unique column a lost race collided on.
func (s *userService) duplicateError(username string) error {
	if username != "" {
		var count int64
		if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrDuplicateUsername
		}
	}
	return apperrors.ErrDuplicateEmail
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperrors.WithField(apperrors.ErrInvalidInput, "email", "Este campo es requerido.")
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return "", apperrors.WithField(apperrors.ErrInvalidInput, "email", "Introduzca una dirección de correo electrónico válida.")
	}
	return email, nil
}

// validatePassword enforces a minimum length and rejects all-digit passwords.
func validatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return apperrors.WithField(apperrors.ErrInvalidInput, "password",
			"La contraseña es demasiado corta. Debe contener al menos 8 caracteres.")
	}
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return apperrors.WithField(apperrors.ErrInvalidInput, "password", "La contraseña es completamente numérica.")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return string(hashed), nil
}
