package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/domain"
	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/dto"
)

const tokenMessagePrefix = "(MVP) Verification token generated. Copy this token to verify your email: "

func (s *Suite) postJSON(path string, payload any) *http.Response {
	body, err := json.Marshal(payload)
	s.Require().NoError(err)

	resp, err := http.Post(s.BaseURL+path, "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	return resp
}

func (s *Suite) register(email, username string) *dto.UserResponse {
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Email:    email,
		Username: username,
		Password: "Sup3rb!password",
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "Registration should succeed")

	var user dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&user))
	return &user
}

// verifyEmail pulls the verification token from the resend endpoint and
// consumes it
func (s *Suite) verifyEmail(email string) {
	resp := s.postJSON("/api/v1/auth/resend-verification-email", dto.ResendVerificationRequest{Email: email})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var resendResp dto.VerificationEmailResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&resendResp))
	token := strings.TrimPrefix(resendResp.Message, tokenMessagePrefix)
	s.Require().NotEqual(resendResp.Message, token, "Expected token in resend message")

	verifyResp := s.postJSON("/api/v1/auth/verify-email", dto.EmailVerificationRequest{Token: token})
	defer verifyResp.Body.Close()
	s.Require().Equal(http.StatusOK, verifyResp.StatusCode)
}

func (s *Suite) login(email, password string) (*domain.TokenPair, *http.Response) {
	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{Email: email, Password: password})
	if resp.StatusCode != http.StatusOK {
		return nil, resp
	}

	var pair domain.TokenPair
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&pair))
	resp.Body.Close()
	return &pair, resp
}

func (s *Suite) TestRegister_Success() {
	user := s.register("test@example.com", "testuser")

	s.NotEmpty(user.ID)
	s.Equal("test@example.com", user.Email)
	s.Equal("testuser", user.Username)
	s.Equal("consumer", user.Role)
	s.Equal("active", user.Status)
	s.False(user.EmailVerified)
	s.NotEmpty(user.CreatedAt)
}

func (s *Suite) TestRegister_DuplicateEmail() {
	s.register("duplicate@example.com", "firstuser")

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Email:    "duplicate@example.com",
		Username: "seconduser",
		Password: "Sup3rb!password",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	s.Equal("Conflict", errResp.Error)
}

func (s *Suite) TestRegister_DuplicateUsername() {
	s.register("one@example.com", "takenname")

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Email:    "two@example.com",
		Username: "takenname",
		Password: "Sup3rb!password",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *Suite) TestRegister_InvalidEmail() {
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Email:    "invalid-email",
		Username: "someuser",
		Password: "Sup3rb!password",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRegister_WeakPassword() {
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Email:    "test@example.com",
		Username: "someuser",
		Password: "short",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_UnverifiedEmail() {
	s.register("unverified@example.com", "unverified")

	_, resp := s.login("unverified@example.com", "Sup3rb!password")
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.register("login@example.com", "loginuser")
	s.verifyEmail("login@example.com")

	pair, resp := s.login("login@example.com", "Sup3rb!password")
	defer resp.Body.Close()

	s.Require().NotNil(pair)
	s.NotEmpty(pair.AccessToken)
	s.NotEmpty(pair.RefreshToken)
	s.Equal("bearer", pair.TokenType)
	s.NotZero(pair.ExpiresIn)
}

func (s *Suite) TestLogin_InvalidCredentials() {
	_, resp := s.login("nonexistent@example.com", "WrongPass1!")
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	s.Equal("Unauthorized", errResp.Error)
}

func (s *Suite) TestLogin_LockoutAfterFailedAttempts() {
	s.register("lockme@example.com", "lockmeuser")
	s.verifyEmail("lockme@example.com")

	for i := 0; i < 3; i++ {
		_, resp := s.login("lockme@example.com", "WrongPass1!")
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	}

	// Correct password no longer helps
	_, resp := s.login("lockme@example.com", "Sup3rb!password")
	defer resp.Body.Close()
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestGetMe_Success() {
	s.register("getme@example.com", "getmeuser")
	s.verifyEmail("getme@example.com")

	pair, _ := s.login("getme@example.com", "Sup3rb!password")
	s.Require().NotNil(pair)

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", pair.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var userResp dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&userResp))

	s.NotEmpty(userResp.ID)
	s.Equal("getme@example.com", userResp.Email)
	s.True(userResp.EmailVerified)
	s.NotNil(userResp.LastLogin)
}

func (s *Suite) TestGetMe_NoToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe_InvalidToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_RotatesTokens() {
	s.register("refresh@example.com", "refreshuser")
	s.verifyEmail("refresh@example.com")

	pair, _ := s.login("refresh@example.com", "Sup3rb!password")
	s.Require().NotNil(pair)

	resp := s.postJSON("/api/v1/auth/refresh-token", dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var newPair domain.TokenPair
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&newPair))
	s.NotEmpty(newPair.AccessToken)
	s.NotEqual(pair.RefreshToken, newPair.RefreshToken)

	// The rotated-out token is rejected on reuse
	reuseResp := s.postJSON("/api/v1/auth/refresh-token", dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	defer reuseResp.Body.Close()
	s.Equal(http.StatusUnauthorized, reuseResp.StatusCode)
}

func (s *Suite) TestRefresh_InvalidToken() {
	resp := s.postJSON("/api/v1/auth/refresh-token", dto.RefreshTokenRequest{RefreshToken: "garbage"})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogout_RevokesTokens() {
	s.register("logout@example.com", "logoutuser")
	s.verifyEmail("logout@example.com")

	pair, _ := s.login("logout@example.com", "Sup3rb!password")
	s.Require().NotNil(pair)

	body, _ := json.Marshal(dto.LogoutRequest{RefreshToken: pair.RefreshToken})
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", pair.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var successResp dto.SuccessResponse
	json.NewDecoder(resp.Body).Decode(&successResp)
	s.Equal("Logged out successfully", successResp.Message)

	// The revoked access token no longer authenticates
	meReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	meReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", pair.AccessToken))
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	defer meResp.Body.Close()
	s.Equal(http.StatusUnauthorized, meResp.StatusCode)

	// Neither does the revoked refresh token
	refreshResp := s.postJSON("/api/v1/auth/refresh-token", dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	defer refreshResp.Body.Close()
	s.Equal(http.StatusUnauthorized, refreshResp.StatusCode)
}

func (s *Suite) TestLogout_NoToken() {
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestVerifyEmail_InvalidToken() {
	resp := s.postJSON("/api/v1/auth/verify-email", dto.EmailVerificationRequest{Token: "garbage"})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestResendVerification_AlreadyVerified() {
	s.register("done@example.com", "doneuser")
	s.verifyEmail("done@example.com")

	resp := s.postJSON("/api/v1/auth/resend-verification-email", dto.ResendVerificationRequest{Email: "done@example.com"})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestCheckPasswordStrength() {
	resp := s.postJSON("/api/v1/auth/check-password-strength", dto.PasswordStrengthRequest{Password: "MyStr0ng!P@ssw0rd2024"})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var strengthResp dto.PasswordStrengthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&strengthResp))
	s.Equal(100, strengthResp.Score)
	s.Equal("very_strong", strengthResp.Strength)
	s.True(strengthResp.MeetsPolicy)
}

func (s *Suite) TestCompleteFlow() {
	email := "complete@example.com"
	password := "Sup3rb!password"

	s.register(email, "completeuser")
	s.verifyEmail(email)

	pair, _ := s.login(email, password)
	s.Require().NotNil(pair)

	meReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	meReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", pair.AccessToken))
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	defer meResp.Body.Close()
	s.Equal(http.StatusOK, meResp.StatusCode)

	refreshResp := s.postJSON("/api/v1/auth/refresh-token", dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	defer refreshResp.Body.Close()
	s.Equal(http.StatusOK, refreshResp.StatusCode)

	var newPair domain.TokenPair
	s.Require().NoError(json.NewDecoder(refreshResp.Body).Decode(&newPair))

	logoutBody, _ := json.Marshal(dto.LogoutRequest{RefreshToken: newPair.RefreshToken})
	logoutReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", bytes.NewBuffer(logoutBody))
	logoutReq.Header.Set("Content-Type", "application/json")
	logoutReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", newPair.AccessToken))
	logoutResp, err := http.DefaultClient.Do(logoutReq)
	s.Require().NoError(err)
	defer logoutResp.Body.Close()
	s.Equal(http.StatusOK, logoutResp.StatusCode)

	meReq2, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	meReq2.Header.Set("Authorization", fmt.Sprintf("Bearer %s", newPair.AccessToken))
	meResp2, err := http.DefaultClient.Do(meReq2)
	s.Require().NoError(err)
	defer meResp2.Body.Close()
	s.Equal(http.StatusUnauthorized, meResp2.StatusCode)
}
