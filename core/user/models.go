package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
)

// Roles. An identity carries exactly one role, fixed at creation; the "admin:"
// prefix groups the administrative roles so permission checks stay cheap.
const (
	RoleStudent  = "student"
	RoleTeacher  = "teacher"
	RoleGuardian = "guardian"

	RoleAdminPrefix    = "admin:"
	RoleAdminPrincipal = "admin:principal"
	RoleAdminOwner     = "admin:owner"
)

var (
	AllRoles = []string{RoleStudent, RoleTeacher, RoleGuardian, RoleAdminPrincipal, RoleAdminOwner}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Guardian", Value: RoleGuardian},
		{Name: "Admin Principal", Value: RoleAdminPrincipal},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is an identity known to the platform. The linked Student/Teacher
// profile (if any) is a separate record.
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         string    `json:"role" db:"role"`
	IsActive     *bool     `json:"is_active" db:"is_active"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool    { return strings.HasPrefix(u.Role, RoleAdminPrefix) }
func (u *User) IsTeacher() bool  { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool  { return u.Role == RoleStudent }
func (u *User) IsGuardian() bool { return u.Role == RoleGuardian }

// Student is the school-scoped profile linked to a student identity.
type Student struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	SchoolID      string    `json:"school_id" db:"school_id"`
	ClassID       string    `json:"class_id" db:"class_id"`
	GuardianID    string    `json:"guardian_id" db:"guardian_id"`
	StudentNo     string    `json:"student_no" db:"student_no"` // unique within a school
	BirthDate     time.Time `json:"birth_date" db:"birth_date"`
	AdmissionDate time.Time `json:"admission_date" db:"admission_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Teacher is the school-scoped profile linked to a teacher identity.
type Teacher struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	SchoolID      string    `json:"school_id" db:"school_id"`
	StaffNo       string    `json:"staff_no" db:"staff_no"`
	Department    string    `json:"department" db:"department"`
	Qualification string    `json:"qualification" db:"qualification"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"required,role"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing
// User. Role is deliberately absent: it is immutable after creation.
type UpdateUser struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, svc *Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(uu.Email, origUsr)
}

// NewStudent contains information needed to attach a Student profile to an
// existing student identity.
type NewStudent struct {
	UserID        string    `json:"user_id" validate:"required"`
	SchoolID      string    `json:"school_id" validate:"required"`
	ClassID       string    `json:"class_id" validate:"required"`
	GuardianID    string    `json:"guardian_id"`
	StudentNo     string    `json:"student_no" validate:"required,alphanum_"`
	BirthDate     time.Time `json:"birth_date"`
	AdmissionDate time.Time `json:"admission_date"`
}

func (ns *NewStudent) Validate(svc *Service) error {
	ns.StudentNo = core.CleanString(ns.StudentNo, true /* lower */)
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckStudentNoUniqueness(ns.SchoolID, ns.StudentNo)
}

// NewTeacher contains information needed to attach a Teacher profile to an
// existing teacher identity.
type NewTeacher struct {
	UserID        string `json:"user_id" validate:"required"`
	SchoolID      string `json:"school_id" validate:"required"`
	StaffNo       string `json:"staff_no" validate:"required,alphanum_"`
	Department    string `json:"department"`
	Qualification string `json:"qualification"`
}

func (nt *NewTeacher) Validate() error {
	nt.StaffNo = core.CleanString(nt.StaffNo, true /* lower */)
	return core.Validate.Struct(nt)
}
