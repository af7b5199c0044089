package types

// JSON shapes shared by handlers and the coordinator read-models.

type UserResponse struct {
	ID             uint           `json:"id"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	TotalCleanings int            `json:"total_cleanings"`
	Apartment      *ApartmentInfo `json:"apartment,omitempty"`
}

// ApartmentInfo is the membership summary embedded in user responses.
type ApartmentInfo struct {
	ApartmentID  uint   `json:"apartment_id"`
	BuildingCode string `json:"building_code"`
	Number       int    `json:"number"`
	Role         string `json:"role"`
}

type BuildingResponse struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type ApartmentResponse struct {
	ID               uint   `json:"id"`
	BuildingCode     string `json:"building_code"`
	Number           int    `json:"number"`
	MaxResidents     int    `json:"max_residents"`
	CurrentResidents int    `json:"current_residents"`
	UseDefaultTasks  bool   `json:"use_default_tasks"`
}

type MemberResponse struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type SlotResponse struct {
	DayOfWeek       int    `json:"day_of_week"`
	ClaimantID      *uint  `json:"claimant_id,omitempty"`
	ClaimantName    string `json:"claimant_name,omitempty"`
	ClaimedByCaller bool   `json:"claimed_by_caller"`
}

type TaskResponse struct {
	ID        uint   `json:"id"`
	DayOfWeek int    `json:"day_of_week"`
	Name      string `json:"name"`
	IsDone    bool   `json:"is_done"`
}

// ApartmentTaskResponse is a task in the apartment-wide day view, carrying
// the owner alongside the item.
type ApartmentTaskResponse struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	DayOfWeek int    `json:"day_of_week"`
	Name      string `json:"name"`
	IsDone    bool   `json:"is_done"`
}

type TemplateResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
