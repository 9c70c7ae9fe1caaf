// Package site implements the SITE user administration commands on top of
// the user store and the task channel.
package site

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/tkjenll/ebftpd/pkg/clog"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/stor"
	"github.com/tkjenll/ebftpd/pkg/lock"
	"github.com/tkjenll/ebftpd/pkg/task"
)

// firstUID is where uid allocation starts.
const firstUID = 1000

// uidAllocKey guards picking a uid and creating the user with it.
const uidAllocKey = "\x00uid"

type Site struct {
	users  stor.UserStor
	groups stor.GroupStor
	tasks  *task.Channel
	locks  *lock.KeyLocker[string]
}

func New(users stor.UserStor, groups stor.GroupStor, tasks *task.Channel) *Site {
	return &Site{users: users, groups: groups, tasks: tasks, locks: lock.NewKeyLocker[string]()}
}

// AddUser creates name with group as its primary group. The uid is one past
// the highest in use.
func (s *Site) AddUser(name, group string) (*ftpmodel.User, error) {
	if name == "" || strings.ContainsAny(name, " \t/") {
		return nil, fmt.Errorf("invalid user name %q", name)
	}

	g, err := s.groups.GetGroupByName(group)
	if err != nil {
		return nil, errors.Wrapf(err, "group %s", group)
	}

	var user *ftpmodel.User
	err = s.locks.WithLock(uidAllocKey, func() error {
		uid, err := s.nextUID()
		if err != nil {
			return err
		}

		user, err = s.users.CreateUser(&ftpmodel.User{ID: uid, Name: name, PrimaryGID: g.ID})
		return errors.Wrapf(err, "creating user %s", name)
	})
	if err != nil {
		return nil, err
	}

	user.PrimaryGroup = g
	clog.Process().WithField("user", name).WithField("group", group).Info("user added")
	return user, nil
}

// GAddUser is AddUser with the group given first, as typed by a group admin.
func (s *Site) GAddUser(group, name string) (*ftpmodel.User, error) {
	return s.AddUser(name, group)
}

// DelUser removes the user record and then kicks any live sessions the user
// still has, returning how many were kicked.
func (s *Site) DelUser(name string) (uint, error) {
	s.locks.Lock(name)
	defer s.locks.Unlock(name)

	user, err := s.users.DeleteUserByName(name)
	if err != nil {
		return 0, errors.Wrapf(err, "deleting user %s", name)
	}

	kicked, err := task.Kick(s.tasks, user.UID())
	if err != nil {
		return 0, errors.Wrapf(err, "kicking user %s", name)
	}

	clog.Process().WithField("user", name).WithField("kicked", kicked).Info("user deleted")
	return kicked, nil
}

// DelUserReply formats the reply line for a successful DelUser.
func DelUserReply(name string, kicked uint) string {
	reply := fmt.Sprintf("User %s has been deleted.", name)
	if kicked > 0 {
		reply += fmt.Sprintf(" (%d login(s) kicked)", kicked)
	}

	return reply
}

func (s *Site) nextUID() (int, error) {
	users, err := s.users.ListUsers()
	if err != nil {
		return 0, errors.Wrap(err, "listing users")
	}

	uid := firstUID
	for _, u := range users {
		if u.ID >= uid {
			uid = u.ID + 1
		}
	}

	return uid, nil
}
