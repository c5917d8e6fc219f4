// Package reviewflow drives the client side of reviewing the other party
// of a project once a freelancer is assigned: the star inputs, the draft and its validation, the
// submission call and the modal lifecycle around them.
package reviewflow

// Role is the caller's side of a project.
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

// Party is one side of a project as the client sees it.
type Party struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project carries the two parties a review can be written about.
// Freelancer is nil until someone is assigned.
type Project struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Client     *Party `json:"client,omitempty"`
	Freelancer *Party `json:"freelancer,omitempty"`
}

// ResolveTarget returns the party the caller reviews: a client reviews the
// freelancer and a freelancer reviews the client. ok is false when that
// party is missing or the role is unknown.
func ResolveTarget(project Project, role Role) (target Party, ok bool) {
	var party *Party
	switch role {
	case RoleClient:
		party = project.Freelancer
	case RoleFreelancer:
		party = project.Client
	}
	if party == nil || party.ID == "" {
		return Party{}, false
	}
	return *party, true
}
