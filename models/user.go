package models

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

type User struct {
	ID           int         `gorm:"primary_key" json:"id"`
	FirstName    string      `gorm:"size:100;not null" json:"first_name" binding:"required"`
	MiddleName   string      `gorm:"size:100" json:"middle_name"`
	LastName     string      `gorm:"size:100;not null" json:"last_name" binding:"required"`
	Username     string      `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Email        string      `gorm:"size:150;not null;unique" json:"email" binding:"required"`
	PhoneNumber  string      `gorm:"size:20" json:"phone_number"`
	Password     string      `gorm:"size:255;not null" json:"password,omitempty"`
	Role         Role        `gorm:"type:enum('ADMIN','MANAGER','CASHIER','STAFF','DG','DF','RFM','CHIEF_ACCOUNTANT','ACCOUNTANT');not null" json:"role"`
	UserType     UserType    `gorm:"type:enum('HQ','ZONE','CENTRE');not null" json:"user_type"`
	Status       UserStatus  `gorm:"type:enum('ACTIVE','INACTIVE','PENDING');not null;default:'ACTIVE'" json:"status"`
	AvatarUrl    string      `json:"avatar_url"`
	CentreId     *int        `gorm:"index" json:"centre_id"`
	Centre       *Centre     `gorm:"foreignKey:CentreId" json:"centre,omitempty"`
	DepartmentId *int        `gorm:"index" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentId" json:"department,omitempty"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

// LoginInfo is the login response: token plus the scope claims the dashboard
// derives its visibility from.
type LoginInfo struct {
	Token    string `json:"token"`
	UserId   int    `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	UserType string `json:"userType"`
	Centre   string `json:"centre"`
	Zone     string `json:"zone"`
}

const (
	loginLockoutThreshold = 5
	loginLockoutWindow    = 15 * time.Minute
)

// Login verifies credentials, records the attempt and the audit entry, and
// returns a signed token stored in redis for session checks.
func Login(ctx context.Context, email, password, ipAddress, userAgent string) (*LoginInfo, error) {

	db := config.GetDB()

	email = strings.ToLower(strings.TrimSpace(email))
	if failures, err := RecentFailedAttempts(ctx, email, loginLockoutWindow); err == nil && failures >= loginLockoutThreshold {
		return nil, errors.New("too many failed attempts, try again later")
	}

	var user User
	err := db.WithContext(ctx).
		Preload("Centre").Preload("Centre.Zone").
		Where("email = ?", email).
		Take(&user).Error
	if err != nil {
		LogLoginAttempt(ctx, email, ipAddress, LoginAttemptFailure)
		return nil, errors.New("invalid email or password")
	}

	if err := utils.ComparePassword(user.Password, password); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			LogLoginAttempt(ctx, email, ipAddress, LoginAttemptFailure)
			return nil, errors.New("invalid email or password")
		}
		return nil, err
	}

	if user.Status != UserStatusActive {
		LogLoginAttempt(ctx, email, ipAddress, LoginAttemptFailure)
		return nil, errors.New("user is disabled")
	}

	LogLoginAttempt(ctx, email, ipAddress, LoginAttemptSuccess)
	RecordAudit(ctx, &user, "User login", "User", user.ID, ipAddress, userAgent)

	centreName := ""
	zoneName := ""
	if user.Centre != nil {
		centreName = user.Centre.Name
		if user.Centre.Zone != nil {
			zoneName = user.Centre.Zone.Name
		}
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role), string(user.UserType), centreName, zoneName)
	if err != nil {
		return nil, err
	}

	// session record for middleware lookups
	if err := config.SetRedisValue("Token:"+token, user.Username, utils.TokenLifespan()); err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token:    token,
		UserId:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		UserType: string(user.UserType),
		Centre:   centreName,
		Zone:     zoneName,
	}, nil
}

// Logout destroys the current session token.
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + fmt.Sprint(token)); err != nil {
		return false, err
	}
	return true, nil
}

func GetAllUsers(ctx context.Context) ([]*User, error) {
	db := config.GetDB()

	var results []*User
	if err := db.WithContext(ctx).Preload("Centre").Preload("Department").Find(&results).Error; err != nil {
		return nil, err
	}
	for _, u := range results {
		u.PrepareGive()
	}
	return results, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	result, err := utils.FetchSingleModel[User](ctx, id, "Centre", "Centre.Zone", "Department")
	if err != nil {
		return nil, err
	}
	result.PrepareGive()
	return result, nil
}

type NewUser struct {
	FirstName    string   `json:"first_name" binding:"required"`
	MiddleName   string   `json:"middle_name"`
	LastName     string   `json:"last_name" binding:"required"`
	Username     string   `json:"username" binding:"required"`
	Email        string   `json:"email" binding:"required"`
	PhoneNumber  string   `json:"phone_number"`
	Password     string   `json:"password" binding:"required"`
	Role         Role     `json:"role" binding:"required"`
	UserType     UserType `json:"user_type" binding:"required"`
	CentreId     *int     `json:"centre_id"`
	DepartmentId *int     `json:"department_id"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	db := config.GetDB()

	if !utils.IsValidEmail(input.Email) {
		return nil, errInvalidEmail
	}
	if !input.Role.IsValid() {
		return nil, errors.New("invalid role")
	}
	if !input.UserType.IsValid() {
		return nil, errors.New("invalid user type")
	}
	if input.UserType != UserTypeHQ && input.CentreId == nil {
		return nil, errors.New("centre is required for centre or zone users")
	}
	if input.PhoneNumber != "" {
		if err := utils.ValidatePhoneNumber(input.PhoneNumber, utils.CountryCode); err != nil {
			return nil, err
		}
	}
	if input.CentreId != nil {
		if err := utils.ValidateResourceId[Centre](ctx, *input.CentreId); err != nil {
			return nil, errCentreNotFound
		}
	}
	if input.DepartmentId != nil {
		if err := utils.ValidateResourceId[Department](ctx, *input.DepartmentId); err != nil {
			return nil, errors.New("department not found")
		}
	}

	var count int64
	err := db.WithContext(ctx).Model(&User{}).
		Where("username = ? OR email = ?", input.Username, input.Email).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("duplicate username or email")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		FirstName:    input.FirstName,
		MiddleName:   input.MiddleName,
		LastName:     input.LastName,
		Username:     html.EscapeString(strings.TrimSpace(input.Username)),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PhoneNumber:  input.PhoneNumber,
		Password:     string(hashedPassword),
		Role:         input.Role,
		UserType:     input.UserType,
		Status:       UserStatusActive,
		CentreId:     input.CentreId,
		DepartmentId: input.DepartmentId,
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

func (input *User) UpdateUser(ctx context.Context, id int) (*User, error) {

	db := config.GetDB()

	var existing User
	if err := db.WithContext(ctx).First(&existing, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if input.Username != "" || input.Email != "" {
		var count int64
		err := db.WithContext(ctx).Model(&User{}).
			Where("username = ? OR email = ?", input.Username, input.Email).
			Not("id = ?", id).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("duplicate username or email")
		}
	}

	if input.FirstName != "" {
		existing.FirstName = input.FirstName
	}
	if input.MiddleName != "" {
		existing.MiddleName = input.MiddleName
	}
	if input.LastName != "" {
		existing.LastName = input.LastName
	}
	if input.Username != "" {
		existing.Username = html.EscapeString(strings.TrimSpace(input.Username))
	}
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return nil, errInvalidEmail
		}
		existing.Email = strings.ToLower(input.Email)
	}
	if input.PhoneNumber != "" {
		if err := utils.ValidatePhoneNumber(input.PhoneNumber, utils.CountryCode); err != nil {
			return nil, err
		}
		existing.PhoneNumber = input.PhoneNumber
	}
	if input.Role != "" {
		if !input.Role.IsValid() {
			return nil, errors.New("invalid role")
		}
		existing.Role = input.Role
	}
	if input.UserType != "" {
		if !input.UserType.IsValid() {
			return nil, errors.New("invalid user type")
		}
		existing.UserType = input.UserType
	}
	if input.Status != "" {
		if !input.Status.IsValid() {
			return nil, errors.New("invalid status")
		}
		existing.Status = input.Status
	}
	if input.AvatarUrl != "" {
		existing.AvatarUrl = input.AvatarUrl
	}
	if input.CentreId != nil {
		if err := utils.ValidateResourceId[Centre](ctx, *input.CentreId); err != nil {
			return nil, errCentreNotFound
		}
		existing.CentreId = input.CentreId
	}
	if input.DepartmentId != nil {
		if err := utils.ValidateResourceId[Department](ctx, *input.DepartmentId); err != nil {
			return nil, errors.New("department not found")
		}
		existing.DepartmentId = input.DepartmentId
	}

	if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	existing.PrepareGive()
	return &existing, nil
}

func DeleteUser(ctx context.Context, id int) error {
	db := config.GetDB()

	var user User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	return db.WithContext(ctx).Delete(&user).Error
}

// ChangePassword verifies the current password before replacing it.
func ChangePassword(ctx context.Context, id int, currentPassword, newPassword string) error {
	db := config.GetDB()

	var user User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if err := utils.ComparePassword(user.Password, currentPassword); err != nil {
		return errors.New("current password is incorrect")
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&user).Update("password", string(hashed)).Error
}
