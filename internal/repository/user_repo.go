package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddPoints 原子累加积分，返回累加后的积分
func (r *UserRepository) AddPoints(id int64, points int) (int, error) {
	if points != 0 {
		err := r.db.Model(&model.User{}).Where("id = ?", id).
			Update("points", gorm.Expr("points + ?", points)).Error
		if err != nil {
			return 0, err
		}
	}

	var total int
	err := r.db.Model(&model.User{}).Where("id = ?", id).Select("points").Scan(&total).Error
	return total, err
}

// ListLeaderboard 按积分或连续天数倒序列出学生
func (r *UserRepository) ListLeaderboard(sortField string, limit int) ([]*model.User, error) {
	if sortField != "streak" {
		sortField = "points"
	}

	var users []*model.User
	err := r.db.Where("role = ?", model.RoleStudent).
		Order(sortField + " DESC").
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
