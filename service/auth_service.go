package service

import (
	"fmt"
	"time"

	"github.com/learnpet/learnpet/config"
	"github.com/learnpet/learnpet/models"
	"github.com/learnpet/learnpet/repository"
	"github.com/learnpet/learnpet/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(phone, name, school, password, role string) (*models.User, error)
	Login(phone, password, role string) (string, *models.User, error)
	GetUser(id uint) (*models.User, error)
	UpdateProfile(id uint, name, school string) (*models.User, error)
}

type AuthServiceImpl struct {
	repo      repository.UserRepository
	jwtSecret string
	jwtExpire time.Duration
	logger    *logrus.Logger
}

func NewAuthService(repo repository.UserRepository, cfg config.JWTConfig, logger *logrus.Logger) AuthService {
	return &AuthServiceImpl{
		repo:      repo,
		jwtSecret: cfg.Secret,
		jwtExpire: time.Duration(cfg.ExpireHours) * time.Hour,
		logger:    logger,
	}
}

// Register 注册新账户：手机号唯一，角色注册后不可变
func (s *AuthServiceImpl) Register(phone, name, school, password, role string) (*models.User, error) {
	if phone == "" || name == "" || school == "" || password == "" || role == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if role != models.RoleTeacher && role != models.RoleStudent {
		return nil, fmt.Errorf("%w: role must be teacher or student", ErrValidation)
	}

	// 预检查给出友好错误，并发下由 phone 唯一索引兜底
	if _, err := s.repo.GetByPhone(phone); err == nil {
		return nil, fmt.Errorf("%w: phone already registered", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Phone:    phone,
		Name:     name,
		School:   school,
		Password: string(hash),
		Role:     role,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, translateDBError(err)
	}
	s.logger.Infof("用户注册成功: id=%d role=%s", user.ID, user.Role)
	return user, nil
}

// Login 校验 手机号+角色+密码 三元组，签发 7 天有效的令牌。
// 不区分是哪一项错误，避免泄露账户是否存在。
func (s *AuthServiceImpl) Login(phone, password, role string) (string, *models.User, error) {
	if phone == "" || password == "" || role == "" {
		return "", nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	user, err := s.repo.GetByPhone(phone)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if user.Role != role {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.jwtSecret, user.ID, user.Role, s.jwtExpire)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthServiceImpl) GetUser(id uint) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, translateDBError(err)
	}
	return user, nil
}

func (s *AuthServiceImpl) UpdateProfile(id uint, name, school string) (*models.User, error) {
	if name == "" || school == "" {
		return nil, fmt.Errorf("%w: name and school are required", ErrValidation)
	}
	user, err := s.repo.UpdateProfile(id, name, school)
	if err != nil {
		return nil, translateDBError(err)
	}
	return user, nil
}
