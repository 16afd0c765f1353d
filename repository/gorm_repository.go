package repository

import (
	"context"
	"errors"
	"fmt"

	"habit-battle-system/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormRepository stores users and habits in Postgres through GORM.
// Open the *gorm.DB with TranslateError enabled so duplicate keys surface as gorm.ErrDuplicatedKey.
type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

// OpenPostgres connects to dsn with duplicate-key translation turned on.
func OpenPostgres(dsn string) (*GormRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewGormRepository(db), nil
}

// Close releases the underlying connection pool.
func (r *GormRepository) Close() error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates the users and habits tables.
func (r *GormRepository) AutoMigrate() error {
	return r.DB.AutoMigrate(&models.User{}, &models.Habit{})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}

func (r *GormRepository) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormRepository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

func (r *GormRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

func (r *GormRepository) FindUserByFriendCode(ctx context.Context, code string) (*models.User, error) {
	return r.findUser(ctx, "friend_code = ?", code)
}

func (r *GormRepository) FindUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("username ASC").Find(&users).Error
	return users, translate(err)
}

func (r *GormRepository) FriendCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).Where("friend_code = ?", code).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepository) ListUsers(ctx context.Context, afterID string, limit int) ([]models.User, error) {
	var users []models.User
	q := r.DB.WithContext(ctx).Order("id ASC").Limit(limit)
	if afterID != "" {
		q = q.Where("id > ?", afterID)
	}
	err := q.Find(&users).Error
	return users, translate(err)
}

func (r *GormRepository) InsertUser(ctx context.Context, u *models.User) error {
	return translate(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *GormRepository) SaveUser(ctx context.Context, u *models.User) error {
	return translate(r.DB.WithContext(ctx).Save(u).Error)
}

func (r *GormRepository) FindHabitByID(ctx context.Context, id string) (*models.Habit, error) {
	var h models.Habit
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&h).Error; err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (r *GormRepository) FindHabits(ctx context.Context, f HabitFilter) ([]models.Habit, error) {
	q := r.DB.WithContext(ctx).Model(&models.Habit{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.SharedGroupID != "" {
		q = q.Where("shared_group_id = ?", f.SharedGroupID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("battle_status IN ?", f.Statuses)
	}
	if f.VisibleOnly {
		q = q.Where("is_visible = ?", true)
	}

	var habits []models.Habit
	err := q.Order("created_at ASC").Find(&habits).Error
	return habits, translate(err)
}

func (r *GormRepository) InsertHabit(ctx context.Context, h *models.Habit) error {
	return translate(r.DB.WithContext(ctx).Create(h).Error)
}

func (r *GormRepository) SaveHabit(ctx context.Context, h *models.Habit) error {
	return translate(r.DB.WithContext(ctx).Save(h).Error)
}

func (r *GormRepository) DeleteHabit(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Habit{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) DeleteHabitsByGroup(ctx context.Context, groupID string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("shared_group_id = ?", groupID).Delete(&models.Habit{})
	return res.RowsAffected, translate(res.Error)
}

func (r *GormRepository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{DB: tx})
	})
}
