package stor

import (
	"fmt"
	"sync"

	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
)

type InMemoryUserStor struct {
	mu    sync.Mutex
	users []ftpmodel.User
}

func NewInMemoryUserStor(users []ftpmodel.User) *InMemoryUserStor {
	return &InMemoryUserStor{users: users}
}

func (s *InMemoryUserStor) CreateUser(user *ftpmodel.User) (*ftpmodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Name == user.Name || u.ID == user.ID {
			return nil, fmt.Errorf("user already exists: %s", user.Name)
		}
	}

	s.users = append(s.users, *user)
	return user, nil
}

func (s *InMemoryUserStor) GetUserByName(name string) (*ftpmodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Name == name {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("no such user: %s", name)
}

func (s *InMemoryUserStor) GetUserByID(uid int) (*ftpmodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == uid {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("no such uid: %d", uid)
}

func (s *InMemoryUserStor) ListUsers() ([]ftpmodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]ftpmodel.User, len(s.users))
	copy(users, s.users)
	return users, nil
}

func (s *InMemoryUserStor) DeleteUserByName(name string) (*ftpmodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.Name == name {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return &u, nil
		}
	}
	return nil, fmt.Errorf("no such user: %s", name)
}
