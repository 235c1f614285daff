package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email && !isExcluded(*usr, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func isExcluded(usr user.User, excluded []user.User) bool {
	for _, ex := range excluded {
		if ex.ID == usr.ID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User, isActive *bool) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	upd := *orig
	if usr.Name != "" {
		upd.Name = usr.Name
	}
	if usr.Email != "" {
		upd.Email = usr.Email
	}
	if len(usr.PasswordHash) > 0 {
		upd.PasswordHash = usr.PasswordHash
	}
	if !usr.LastLogin.IsZero() {
		upd.LastLogin = usr.LastLogin
	}
	if isActive != nil {
		upd.IsActive = isActive
	}
	upd.UpdatedAt = usr.UpdatedAt
	repo.db.users[upd.ID] = &upd
	return upd, nil
}

func (repo *userRepository) CheckStudentNoUniqueness(_ context.Context, schoolID, studentNo string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, std := range repo.db.students {
		if std.SchoolID == schoolID && std.StudentNo == studentNo {
			return user.ErrStudentNoExists
		}
	}
	return nil
}

func (repo *userRepository) CreateStudent(_ context.Context, std user.Student) (user.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *userRepository) GetStudentByID(_ context.Context, id string) (user.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return user.Student{}, user.ErrNotFound
}

func (repo *userRepository) GetStudentByUserID(_ context.Context, userID string) (user.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, std := range repo.db.students {
		if std.UserID == userID {
			return *std, nil
		}
	}
	return user.Student{}, user.ErrNotFound
}

func (repo *userRepository) QueryStudentsByClass(_ context.Context, classID string) ([]user.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]user.Student, 0)
	for _, std := range repo.db.students {
		if std.ClassID == classID {
			students = append(students, *std)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].StudentNo < students[j].StudentNo })
	return students, nil
}

func (repo *userRepository) QueryStudentsBySchool(_ context.Context, schoolID string) ([]user.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]user.Student, 0)
	for _, std := range repo.db.students {
		if std.SchoolID == schoolID {
			students = append(students, *std)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].StudentNo < students[j].StudentNo })
	return students, nil
}

func (repo *userRepository) UpdateStudent(_ context.Context, std user.Student) (user.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[std.ID]; !ok {
		return user.Student{}, user.ErrNotFound
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *userRepository) CreateTeacher(_ context.Context, tch user.Teacher) (user.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *userRepository) GetTeacherByID(_ context.Context, id string) (user.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tch, ok := repo.db.teachers[id]; ok {
		return *tch, nil
	}
	return user.Teacher{}, user.ErrNotFound
}

func (repo *userRepository) GetTeacherByUserID(_ context.Context, userID string) (user.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, tch := range repo.db.teachers {
		if tch.UserID == userID {
			return *tch, nil
		}
	}
	return user.Teacher{}, user.ErrNotFound
}

func (repo *userRepository) QueryTeachersBySchool(_ context.Context, schoolID string) ([]user.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]user.Teacher, 0)
	for _, tch := range repo.db.teachers {
		if tch.SchoolID == schoolID {
			teachers = append(teachers, *tch)
		}
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].StaffNo < teachers[j].StaffNo })
	return teachers, nil
}
