package repository

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusActive    MatchStatus = "active"
	MatchStatusCompleted MatchStatus = "completed"
)

type Verdict string

const (
	VerdictSecondDate     Verdict = "second_date"
	VerdictGhosted        Verdict = "ghosted"
	VerdictItsComplicated Verdict = "its_complicated"
)

type Agent struct {
	ID                 string
	Name               string
	MoltbookID         string
	ArchetypePrimary   string
	ArchetypeSecondary string
	Bio                string
	Interests          []string
	VibeScore          float64
	AvatarURL          string
	Karma              int
	SamplePosts        []string
	RegisteredAt       time.Time
}

type Highlight struct {
	Turn  int    `json:"turn"`
	Quote string `json:"quote"`
	Why   string `json:"why"`
}

type Match struct {
	ID             string
	AgentAID       string
	AgentBID       string
	Status         MatchStatus
	ChemistryScore *int
	Verdict        *Verdict
	Summary        string
	Highlights     []Highlight
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

type Message struct {
	ID         string
	MatchID    string
	AgentID    string
	TurnNumber int
	Phase      string
	Content    string
	RevealAt   time.Time
	CreatedAt  time.Time
}

type SwipeDecision struct {
	ID        string
	SwiperID  string
	TargetID  string
	Decision  string
	Reason    string
	CreatedAt time.Time
}
