package auth_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/incidentops/incident-management/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockUserRepository struct {
	credentials map[string]struct {
		userID int64
		hash   string
	}
	users       map[int64]*auth.User
	usernames   map[string]bool
	emails      map[string]bool
	createError error
	nextID      int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		credentials: make(map[string]struct {
			userID int64
			hash   string
		}),
		users:     make(map[int64]*auth.User),
		usernames: make(map[string]bool),
		emails:    make(map[string]bool),
		nextID:    1,
	}
}

func (m *mockUserRepository) addUser(username, email, password string, role auth.Role, svc *auth.Service) *auth.User {
	hash, err := svc.HashPassword(password)
	if err != nil {
		panic(err)
	}
	id := m.nextID
	m.nextID++
	u := &auth.User{ID: id, Username: username, Email: email, Role: role, NotificationsEnabled: true}
	m.credentials[username] = struct {
		userID int64
		hash   string
	}{id, hash}
	m.users[id] = u
	m.usernames[username] = true
	m.emails[email] = true
	return u
}

func (m *mockUserRepository) GetCredentials(username string) (int64, string, error) {
	c, ok := m.credentials[username]
	if !ok {
		return 0, "", errors.New("user not found")
	}
	return c.userID, c.hash, nil
}

func (m *mockUserRepository) GetAuthUser(userID int64) (*auth.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserRepository) UsernameExists(username string) (bool, error) {
	return m.usernames[username], nil
}

func (m *mockUserRepository) EmailExists(email string) (bool, error) {
	return m.emails[email], nil
}

func (m *mockUserRepository) CreateUser(dto auth.RegisterDTO, passwordHash string) (int64, error) {
	if m.createError != nil {
		return 0, m.createError
	}
	id := m.nextID
	m.nextID++
	m.users[id] = &auth.User{ID: id, Username: dto.Username, Email: dto.Email, Role: auth.RoleUser}
	m.usernames[dto.Username] = true
	m.emails[dto.Email] = true
	m.credentials[dto.Username] = struct {
		userID int64
		hash   string
	}{id, passwordHash}
	return id, nil
}

type mockSessionRepository struct {
	sessions    map[string]*auth.Session
	createError error
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*auth.Session)}
}

func (m *mockSessionRepository) Create(session *auth.Session) error {
	if m.createError != nil {
		return m.createError
	}
	m.sessions[session.Token] = session
	return nil
}

func (m *mockSessionRepository) GetByToken(token string) (*auth.Session, error) {
	s, ok := m.sessions[token]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

func (m *mockSessionRepository) Delete(token string) error {
	delete(m.sessions, token)
	return nil
}

func (m *mockSessionRepository) DeleteExpired(now time.Time) error {
	for token, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, token)
		}
	}
	return nil
}

var _ = Describe("AuthService", func() {
	var (
		service      *auth.Service
		mockUsers    *mockUserRepository
		mockSessions *mockSessionRepository
		logger       *slog.Logger
	)

	BeforeEach(func() {
		mockUsers = newMockUserRepository()
		mockSessions = newMockSessionRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		codec := auth.NewCookieCodec("test-secret-key-that-is-long-enough")
		service = auth.NewService(mockUsers, mockSessions, codec, 24*time.Hour, 0, logger)
	})

	Describe("Authenticate", func() {
		BeforeEach(func() {
			mockUsers.addUser("jsmith", "jsmith@example.com", "correct-horse-battery", auth.RoleUser, service)
		})

		It("should return a cookie and the user for valid credentials", func() {
			cookie, user, err := service.Authenticate(auth.LoginDTO{Username: "jsmith", Password: "correct-horse-battery"})

			Expect(err).ToNot(HaveOccurred())
			Expect(cookie).ToNot(BeEmpty())
			Expect(user.Username).To(Equal("jsmith"))
			Expect(mockSessions.sessions).To(HaveLen(1))
		})

		It("should reject a wrong password", func() {
			_, _, err := service.Authenticate(auth.LoginDTO{Username: "jsmith", Password: "wrong"})

			Expect(err).To(Equal(auth.ErrInvalidCredentials))
			Expect(mockSessions.sessions).To(BeEmpty())
		})

		It("should reject an unknown username", func() {
			_, _, err := service.Authenticate(auth.LoginDTO{Username: "nobody", Password: "whatever"})

			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("should reject empty credentials", func() {
			_, _, err := service.Authenticate(auth.LoginDTO{})

			Expect(err).To(HaveOccurred())
			Expect(mockSessions.sessions).To(BeEmpty())
		})

		It("should extend the session lifetime with remember", func() {
			cookie, _, err := service.Authenticate(auth.LoginDTO{Username: "jsmith", Password: "correct-horse-battery", Remember: true})
			Expect(err).ToNot(HaveOccurred())
			Expect(cookie).ToNot(BeEmpty())

			for _, s := range mockSessions.sessions {
				Expect(s.ExpiresAt).To(BeTemporally(">", time.Now().Add(29*24*time.Hour)))
			}
		})
	})

	Describe("ValidateCookie", func() {
		var cookie string

		BeforeEach(func() {
			mockUsers.addUser("jsmith", "jsmith@example.com", "correct-horse-battery", auth.RoleUser, service)
			var err error
			cookie, _, err = service.Authenticate(auth.LoginDTO{Username: "jsmith", Password: "correct-horse-battery"})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should resolve a fresh cookie to the user", func() {
			user, err := service.ValidateCookie(cookie)

			Expect(err).ToNot(HaveOccurred())
			Expect(user.Username).To(Equal("jsmith"))
		})

		It("should reject a tampered cookie", func() {
			_, err := service.ValidateCookie(cookie + "x")

			Expect(err).To(Equal(auth.ErrInvalidSession))
		})

		It("should reject a cookie whose session was revoked", func() {
			Expect(service.Logout(cookie)).To(Succeed())

			_, err := service.ValidateCookie(cookie)
			Expect(err).To(Equal(auth.ErrInvalidSession))
		})

		It("should delete expired sessions on access", func() {
			for _, s := range mockSessions.sessions {
				s.ExpiresAt = time.Now().Add(-time.Minute)
			}

			_, err := service.ValidateCookie(cookie)
			Expect(err).To(Equal(auth.ErrSessionExpired))
			Expect(mockSessions.sessions).To(BeEmpty())
		})
	})

	Describe("Register", func() {
		validDTO := func() auth.RegisterDTO {
			return auth.RegisterDTO{
				Username:  "newuser",
				Email:     "newuser@example.com",
				Password:  "password123",
				FirstName: "New",
				LastName:  "User",
			}
		}

		It("should create an account with role user", func() {
			user, err := service.Register(validDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(user.Role).To(Equal(auth.RoleUser))
		})

		It("should reject a duplicate username", func() {
			mockUsers.addUser("newuser", "other@example.com", "password123", auth.RoleUser, service)

			_, err := service.Register(validDTO())
			Expect(err).To(Equal(auth.ErrUsernameTaken))
		})

		It("should reject a duplicate email", func() {
			mockUsers.addUser("otheruser", "newuser@example.com", "password123", auth.RoleUser, service)

			_, err := service.Register(validDTO())
			Expect(err).To(Equal(auth.ErrEmailTaken))
		})

		It("should reject a password shorter than 8 characters", func() {
			dto := validDTO()
			dto.Password = "short"

			_, err := service.Register(dto)
			Expect(err).To(HaveOccurred())
			Expect(mockUsers.usernames).ToNot(HaveKey("newuser"))
		})
	})

	Describe("password hashing", func() {
		It("should verify the original password and nothing else", func() {
			hash, err := service.HashPassword("cat")
			Expect(err).ToNot(HaveOccurred())

			Expect(auth.CheckPassword(hash, "cat")).To(BeTrue())
			Expect(auth.CheckPassword(hash, "dog")).To(BeFalse())
			Expect(auth.CheckPassword(hash, "")).To(BeFalse())
			Expect(auth.CheckPassword(hash, hash)).To(BeFalse())
		})

		It("should produce distinct hashes for the same password", func() {
			h1, err := service.HashPassword("cat")
			Expect(err).ToNot(HaveOccurred())
			h2, err := service.HashPassword("cat")
			Expect(err).ToNot(HaveOccurred())

			Expect(h1).ToNot(Equal(h2))
		})
	})

	Describe("role capabilities", func() {
		It("should let managers and admins update any incident", func() {
			manager := &auth.User{ID: 1, Role: auth.RoleManager}
			admin := &auth.User{ID: 2, Role: auth.RoleAdmin}

			Expect(manager.CanUpdateIncident(99)).To(BeTrue())
			Expect(admin.CanUpdateIncident(99)).To(BeTrue())
		})

		It("should restrict plain users to their own reports", func() {
			user := &auth.User{ID: 7, Role: auth.RoleUser}

			Expect(user.CanUpdateIncident(7)).To(BeTrue())
			Expect(user.CanUpdateIncident(8)).To(BeFalse())
		})

		It("should reject unknown role strings", func() {
			_, err := auth.ParseRole("superuser")
			Expect(err).To(HaveOccurred())
		})
	})
})
