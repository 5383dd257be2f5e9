package model

type Doctor struct {
	Base
	FullName        string  `db:"full_name" json:"full_name"`
	Email           string  `db:"email" json:"email"`
	Phone           string  `db:"phone" json:"phone,omitempty"`
	Specialty       string  `db:"specialty" json:"specialty"`
	Bio             string  `db:"bio" json:"bio,omitempty"`
	ConsultationFee float64 `db:"consultation_fee" json:"consultation_fee"`
	Active          bool    `db:"active" json:"active"`
}

type DoctorFilters struct {
	Specialty string `form:"specialty"`
	Active    *bool  `form:"active"`
}
