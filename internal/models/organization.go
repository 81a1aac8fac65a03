package models

// Organizational reference data. The issue workflow treats these as opaque
// foreign keys; rows are managed by the administrative service and only read
// here (course catalog and lecturer directory lookups).

type College struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:100"`
}

func (College) TableName() string {
	return "colleges"
}

type School struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"uniqueIndex;not null;size:100"`
	CollegeID uint   `json:"college_id" gorm:"not null;index"`

	College College `json:"-" gorm:"foreignKey:CollegeID"`
}

func (School) TableName() string {
	return "schools"
}

type Department struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"uniqueIndex;not null;size:100"`
	SchoolID uint   `json:"school_id" gorm:"not null;index"`

	School School `json:"-" gorm:"foreignKey:SchoolID"`
}

func (Department) TableName() string {
	return "departments"
}

type Programme struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Code         string `json:"code" gorm:"uniqueIndex;not null;size:10"`
	Name         string `json:"name" gorm:"not null;size:100"`
	DepartmentID uint   `json:"department_id" gorm:"not null;index"`

	Department Department `json:"-" gorm:"foreignKey:DepartmentID"`
}

func (Programme) TableName() string {
	return "programmes"
}

type Course struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Code         string `json:"code" gorm:"uniqueIndex;not null;size:10"`
	Name         string `json:"name" gorm:"not null;size:100"`
	DepartmentID uint   `json:"department_id" gorm:"not null;index"`

	Department Department `json:"department" gorm:"foreignKey:DepartmentID"`
}

func (Course) TableName() string {
	return "courses"
}
