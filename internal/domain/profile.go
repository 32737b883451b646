package domain

type EducationPath string

const (
	EducationVocational EducationPath = "vocational"
	EducationUniversity EducationPath = "university"
	EducationHighSchool EducationPath = "high_school"
	EducationWorking    EducationPath = "working"
)

type RiskAttitude string

const (
	RiskAverse   RiskAttitude = "risk_averse"
	RiskBalanced RiskAttitude = "balanced"
	RiskSeeking  RiskAttitude = "risk_seeking"
)

// Profile is the onboarding payload that starts a new game session.
type Profile struct {
	PlayerName      string
	Age             int
	City            string
	EducationPath   EducationPath
	RiskAttitude    RiskAttitude
	MonthlyIncome   float64
	MonthlyExpenses float64
	StartingSavings float64
	StartingDebt    float64
	Aspirations     map[string]bool
}

// GameStart is the server's onboarding response: the freshly created state
// plus the opening narrative turn.
type GameStart struct {
	State   PlayerState
	Initial NarrativeTurn
}
