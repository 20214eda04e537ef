package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table           string
	ID              string
	Email           string
	Password        string
	Name            string
	AvatarURL       string
	Provider        string
	ProviderID      string
	Role            string
	Bio             string
	Location        string
	Website         string
	Company         string
	GithubUsername  string
	TwitterUsername string
	LinkedinURL     string
	CreatedAt       string
	UpdatedAt       string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:           "users.account",
	ID:              "id",
	Email:           "email",
	Password:        "passwordhash",
	Name:            "name",
	AvatarURL:       "avatarurl",
	Provider:        "provider",
	ProviderID:      "providerid",
	Role:            "role",
	Bio:             "bio",
	Location:        "location",
	Website:         "website",
	Company:         "company",
	GithubUsername:  "githubusername",
	TwitterUsername: "twitterusername",
	LinkedinURL:     "linkedinurl",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Password, t.Name, t.AvatarURL, t.Provider, t.ProviderID,
		t.Role, t.Bio, t.Location, t.Website, t.Company, t.GithubUsername,
		t.TwitterUsername, t.LinkedinURL, t.CreatedAt, t.UpdatedAt,
	}
}
