package pawhaven

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Image    string `json:"image"`
	Role     string `json:"role"`
	IsBanned bool   `json:"isBanned"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Stats is the platform-wide rollup behind the dashboard overview.
type Stats struct {
	TotalUsers     int     `json:"totalUsers"`
	TotalPets      int     `json:"totalPets"`
	TotalDonations float64 `json:"totalDonations"`
	TotalCampaigns int     `json:"totalCampaigns"`
	AdoptedPets    int     `json:"adoptedPets"`
}
