package clinicians

type BaseRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

type registerInput struct {
	Body RegisterRequest
}

type RegisterRequest struct {
	BaseRequest
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty" enum:"doctor,nurse" doc:"Clinical role"`
}

type registerOutput struct {
	Body RegisterResponse
}

type RegisterResponse struct {
	ID     int    `json:"clinician_id"`
	Status string `json:"status"`
}

type loginInput struct {
	Body BaseRequest
}

type loginOutput struct {
	Body LoginResponse
}

type LoginResponse struct {
	Token  string `json:"token"`
	Status string `json:"status"`
}
