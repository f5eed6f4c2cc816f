package userservice

type CreateUserRequest struct {
	Username    string   `json:"username"               validate:"required,min=3,max=50,username_format"`
	Password    string   `json:"password,omitempty"     validate:"omitempty,min=8,max=100"`
	DisplayName string   `json:"display_name,omitempty" validate:"omitempty,max=100"`         //nolint:tagliatelle
	Role        string   `json:"role,omitempty"         validate:"omitempty,oneof=admin user readonly"`
	VisibleTags []string `json:"visible_tags,omitempty"`                                      //nolint:tagliatelle
	HiddenTags  []string `json:"hidden_tags,omitempty"`                                       //nolint:tagliatelle
}

// UpdateUserRequest carries partial updates. For the tag fields the
// pointer distinguishes three states: nil leaves the stored value
// untouched, a pointer to an empty list clears the filter, a pointer
// to values replaces it. Empty and absent are not interchangeable.
type UpdateUserRequest struct {
	DisplayName        *string   `json:"display_name,omitempty"         validate:"omitempty,max=100"` //nolint:tagliatelle
	Role               *string   `json:"role,omitempty"                 validate:"omitempty,oneof=admin user readonly"`
	MustChangePassword *bool     `json:"must_change_password,omitempty"` //nolint:tagliatelle
	VisibleTags        *[]string `json:"visible_tags,omitempty"`         //nolint:tagliatelle
	HiddenTags         *[]string `json:"hidden_tags,omitempty"`          //nolint:tagliatelle
}
