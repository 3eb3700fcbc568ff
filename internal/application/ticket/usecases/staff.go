package usecases

import (
	"context"
	stderrors "errors"
	"slices"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

// StaffChecker decides whether a member may act as staff on a panel's
// tickets: guild administrators, holders of the panel's staff role, and
// holders of any guild-configured staff role.
type StaffChecker struct {
	directory    messaging.Directory
	settingsRepo guild.Repository
	logger       logger.Interface
}

func NewStaffChecker(directory messaging.Directory, settingsRepo guild.Repository, logger logger.Interface) *StaffChecker {
	return &StaffChecker{directory: directory, settingsRepo: settingsRepo, logger: logger}
}

func (c *StaffChecker) IsStaff(ctx context.Context, panel *catalog.Panel, userID string) (bool, error) {
	member, err := c.directory.GetMember(ctx, panel.GuildID(), userID)
	if err != nil {
		if stderrors.Is(err, messaging.ErrNotFound) {
			return false, nil
		}
		c.logger.Errorw("failed to resolve member for staff check", "user_id", userID, "guild_id", panel.GuildID(), "error", err)
		return false, errors.NewUnavailableError("could not verify staff permissions, please try again")
	}
	if member.IsAdmin {
		return true, nil
	}
	if panel.StaffRoleID() != "" && slices.Contains(member.RoleIDs, panel.StaffRoleID()) {
		return true, nil
	}

	settings, err := c.settingsRepo.Get(ctx, panel.GuildID())
	if err != nil {
		c.logger.Warnw("failed to load guild settings for staff check", "guild_id", panel.GuildID(), "error", err)
		return false, nil
	}
	return settings != nil && settings.HasStaffRole(member.RoleIDs), nil
}

// requireStaff rejects non-staff with ReasonNotStaff.
func (c *StaffChecker) requireStaff(ctx context.Context, panel *catalog.Panel, userID string) error {
	ok, err := c.IsStaff(ctx, panel, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewPreconditionError(errors.ReasonNotStaff, "only staff can do that")
	}
	return nil
}
