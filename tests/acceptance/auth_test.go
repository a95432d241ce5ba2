package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sneakerlib/auth-service/internal/dto"
)

func (s *Suite) register(email, username, password string) *http.Response {
	reqBody := dto.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/register",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) login(login, password string) *http.Response {
	reqBody := dto.LoginRequest{
		Login:    login,
		Password: password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	return resp
}

// registerActiveUser registers, activates and logs in a user, returning
// the auth response and the refresh token cookies.
func (s *Suite) registerActiveUser(email, username, password string) (dto.AuthResponse, []*http.Cookie) {
	registerResp := s.register(email, username, password)
	defer registerResp.Body.Close()
	s.Require().Equal(http.StatusCreated, registerResp.StatusCode, "Registration should succeed")

	s.activateUser(email)

	loginResp := s.login(email, password)
	defer loginResp.Body.Close()
	s.Require().Equal(http.StatusOK, loginResp.StatusCode, "Login should succeed")

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(loginResp.Body).Decode(&authResp))
	return authResp, loginResp.Cookies()
}

func (s *Suite) TestRegister_Success() {
	resp := s.register("collector@example.com", "collector", "Password123!")
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)

	var registerResp dto.RegisterResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&registerResp))

	s.NotEmpty(registerResp.UserID)
	s.Equal("collector@example.com", registerResp.Email)
	s.Equal("collector", registerResp.Username)
	s.True(registerResp.EmailVerificationRequired)

	// No session is created until the email is verified.
	s.Empty(resp.Cookies())
}

func (s *Suite) TestRegister_DuplicateEmail() {
	resp1 := s.register("duplicate@example.com", "firstuser", "Password123!")
	resp1.Body.Close()

	resp2 := s.register("duplicate@example.com", "seconduser", "Password123!")
	defer resp2.Body.Close()

	s.Equal(http.StatusConflict, resp2.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp2.Body).Decode(&errResp)
	s.Equal("Conflict", errResp.Error)
}

func (s *Suite) TestRegister_DuplicateUsername() {
	resp1 := s.register("first@example.com", "sameuser", "Password123!")
	resp1.Body.Close()

	resp2 := s.register("second@example.com", "sameuser", "Password123!")
	defer resp2.Body.Close()

	s.Equal(http.StatusConflict, resp2.StatusCode)
}

func (s *Suite) TestRegister_Validation() {
	tests := []struct {
		name     string
		email    string
		username string
		password string
	}{
		{"invalid email", "invalid-email", "collector", "Password123!"},
		{"weak password", "user@example.com", "collector", "password1"},
		{"common password", "user@example.com", "collector", "Password123"},
		{"reserved username", "user@example.com", "admin", "Password123!"},
		{"username with spaces", "user@example.com", "bad user", "Password123!"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.register(tt.email, tt.username, tt.password)
			defer resp.Body.Close()
			s.Equal(http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func (s *Suite) TestLogin_RequiresVerifiedEmail() {
	resp := s.register("pending@example.com", "pending1", "Password123!")
	resp.Body.Close()

	loginResp := s.login("pending@example.com", "Password123!")
	defer loginResp.Body.Close()

	s.Equal(http.StatusUnauthorized, loginResp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	authResp, cookies := s.registerActiveUser("login@example.com", "loginuser", "Password123!")

	s.NotEmpty(authResp.AccessToken)
	s.Equal("Bearer", authResp.TokenType)
	s.NotZero(authResp.ExpiresIn)
	s.Equal("login@example.com", authResp.User.Email)
	s.Equal("loginuser", authResp.User.Username)
	s.True(authResp.User.EmailVerified)
	s.NotEmpty(cookies, "Should have refresh token cookie")
}

func (s *Suite) TestLogin_ByUsername() {
	resp := s.register("byname@example.com", "bynameuser", "Password123!")
	resp.Body.Close()
	s.activateUser("byname@example.com")

	loginResp := s.login("bynameuser", "Password123!")
	defer loginResp.Body.Close()

	s.Equal(http.StatusOK, loginResp.StatusCode)
}

func (s *Suite) TestLogin_InvalidCredentials() {
	loginResp := s.login("nonexistent@example.com", "WrongPassword123!")
	defer loginResp.Body.Close()

	s.Equal(http.StatusUnauthorized, loginResp.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(loginResp.Body).Decode(&errResp)
	s.Equal("Unauthorized", errResp.Error)
}

func (s *Suite) TestLogin_WrongPassword() {
	resp := s.register("wrongpass@example.com", "wrongpass", "CorrectPassword1!")
	resp.Body.Close()
	s.activateUser("wrongpass@example.com")

	loginResp := s.login("wrongpass@example.com", "WrongPassword1!")
	defer loginResp.Body.Close()

	s.Equal(http.StatusUnauthorized, loginResp.StatusCode)
}

func (s *Suite) TestGetMe_Success() {
	authResp, _ := s.registerActiveUser("getme@example.com", "getmeuser", "Password123!")

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var userResp dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&userResp))

	s.NotEmpty(userResp.ID)
	s.Equal("getme@example.com", userResp.Email)
	s.Equal("getmeuser", userResp.Username)
	s.Equal("active", userResp.Status)
	s.Equal("user", userResp.Role)
	s.True(userResp.IsEmailVerified)
	s.Equal(1, userResp.LoginCount)
	s.NotEmpty(userResp.CreatedAt)
}

func (s *Suite) TestGetMe_NoToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users/me", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe_InvalidToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_Success() {
	_, cookies := s.registerActiveUser("refresh@example.com", "refreshuser", "Password123!")
	s.Require().NotEmpty(cookies)

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var refreshResp dto.RefreshResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&refreshResp))

	s.NotEmpty(refreshResp.AccessToken)
	s.Equal("Bearer", refreshResp.TokenType)
}

func (s *Suite) TestRefresh_NoCookie() {
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogout_RevokesSession() {
	authResp, cookies := s.registerActiveUser("logout@example.com", "logoutuser", "Password123!")

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// The refresh token no longer works.
	refreshReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, cookie := range cookies {
		refreshReq.AddCookie(cookie)
	}
	refreshResp, err := http.DefaultClient.Do(refreshReq)
	s.Require().NoError(err)
	defer refreshResp.Body.Close()
	s.Equal(http.StatusUnauthorized, refreshResp.StatusCode)

	// The access token is blacklisted for its remaining lifetime.
	meReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users/me", nil)
	meReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	defer meResp.Body.Close()
	s.Equal(http.StatusUnauthorized, meResp.StatusCode)
}

func (s *Suite) TestSessions_ListAndRevoke() {
	authResp, _ := s.registerActiveUser("sessions@example.com", "sessionsuser", "Password123!")

	// A second login opens a second session.
	secondLogin := s.login("sessions@example.com", "Password123!")
	secondLogin.Body.Close()

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/sessions", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var sessions []dto.SessionResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&sessions))
	s.Require().Len(sessions, 2)

	revokeBody, _ := json.Marshal(dto.RevokeTokenRequest{TokenID: sessions[0].TokenID})
	revokeReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/sessions/revoke", bytes.NewBuffer(revokeBody))
	revokeReq.Header.Set("Content-Type", "application/json")
	revokeReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	revokeResp, err := http.DefaultClient.Do(revokeReq)
	s.Require().NoError(err)
	defer revokeResp.Body.Close()
	s.Equal(http.StatusOK, revokeResp.StatusCode)

	listReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/sessions", nil)
	listReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))
	listResp, err := http.DefaultClient.Do(listReq)
	s.Require().NoError(err)
	defer listResp.Body.Close()

	var remaining []dto.SessionResponse
	s.Require().NoError(json.NewDecoder(listResp.Body).Decode(&remaining))
	s.Len(remaining, 1)
}

func (s *Suite) TestUpdateProfile() {
	authResp, _ := s.registerActiveUser("profile@example.com", "profileuser", "Password123!")

	first := "Jordan"
	last := "Smith"
	body, _ := json.Marshal(dto.UpdateProfileRequest{FirstName: &first, LastName: &last})

	req, _ := http.NewRequest("PATCH", s.BaseURL+"/api/v1/users/me", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var userResp dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&userResp))
	s.Require().NotNil(userResp.FirstName)
	s.Equal("Jordan", *userResp.FirstName)
	s.Equal("Jordan Smith", userResp.FullName)
}

func (s *Suite) TestChangePassword_RevokesOtherSessions() {
	authResp, cookies := s.registerActiveUser("changepw@example.com", "changepwuser", "Password123!")

	body, _ := json.Marshal(dto.ChangePasswordRequest{
		CurrentPassword: "Password123!",
		NewPassword:     "NewPassword456!",
	})
	req, _ := http.NewRequest("PUT", s.BaseURL+"/api/v1/users/me/password", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// Old password no longer works, new one does.
	oldLogin := s.login("changepw@example.com", "Password123!")
	oldLogin.Body.Close()
	s.Equal(http.StatusUnauthorized, oldLogin.StatusCode)

	newLogin := s.login("changepw@example.com", "NewPassword456!")
	newLogin.Body.Close()
	s.Equal(http.StatusOK, newLogin.StatusCode)

	// The pre-change refresh token was revoked.
	refreshReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, cookie := range cookies {
		refreshReq.AddCookie(cookie)
	}
	refreshResp, err := http.DefaultClient.Do(refreshReq)
	s.Require().NoError(err)
	defer refreshResp.Body.Close()
	s.Equal(http.StatusUnauthorized, refreshResp.StatusCode)
}

func (s *Suite) TestPasswordRequirements() {
	resp, err := http.Get(s.BaseURL + "/api/v1/auth/password-requirements")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var reqs map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&reqs))
	s.EqualValues(8, reqs["min_length"])
}

func (s *Suite) TestPasswordReset_UnknownEmailDoesNotLeak() {
	body, _ := json.Marshal(dto.ResetPasswordRequest{Email: "nobody@example.com"})
	resp, err := http.Post(s.BaseURL+"/api/v1/auth/password-reset", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestCompleteFlow() {
	email := "complete@example.com"
	password := "Password123!"

	authResp, cookies := s.registerActiveUser(email, "completeuser", password)

	meReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users/me", nil)
	meReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	meResp.Body.Close()
	s.Equal(http.StatusOK, meResp.StatusCode)

	refreshReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, cookie := range cookies {
		refreshReq.AddCookie(cookie)
	}
	refreshResp, err := http.DefaultClient.Do(refreshReq)
	s.Require().NoError(err)
	defer refreshResp.Body.Close()
	s.Equal(http.StatusOK, refreshResp.StatusCode)

	var newAuthResp dto.RefreshResponse
	s.Require().NoError(json.NewDecoder(refreshResp.Body).Decode(&newAuthResp))

	logoutReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)
	logoutReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", newAuthResp.AccessToken))
	for _, cookie := range cookies {
		logoutReq.AddCookie(cookie)
	}
	logoutResp, err := http.DefaultClient.Do(logoutReq)
	s.Require().NoError(err)
	logoutResp.Body.Close()
	s.Equal(http.StatusOK, logoutResp.StatusCode)
}
