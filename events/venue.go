package events

import (
	"context"
	"fmt"
	"slices"

	"github.com/International-Combat-Archery-Alliance/event-checkin/confirm"
	"github.com/International-Combat-Archery-Alliance/event-checkin/validate"
	"github.com/google/uuid"
)

const maxNameLength = 200

type Venue struct {
	ID      uuid.UUID
	Version int
	Name    string
	Address Address
	Areas   []Area
}

type Address struct {
	Street     string
	City       string
	Province   string
	PostalCode string
	Country    string
}

// Area is a check-in zone inside a venue, e.g. a hall or a gate.
type Area struct {
	ID       uuid.UUID
	Name     string
	Capacity int
}

func (v Venue) areaIndex(id uuid.UUID) int {
	return slices.IndexFunc(v.Areas, func(a Area) bool { return a.ID == id })
}

func CreateVenue(ctx context.Context, repo Repository, venue Venue) (Venue, error) {
	if !validate.IsRequired(venue.Name) || !validate.MaxLength(venue.Name, maxNameLength) {
		return Venue{}, NewInvalidVenueError(fmt.Sprintf("Venue name must be between 1 and %d characters", maxNameLength))
	}

	areas := make([]Area, 0, len(venue.Areas))
	for _, area := range venue.Areas {
		if !validate.IsRequired(area.Name) {
			return Venue{}, NewInvalidVenueError("Every area needs a name")
		}
		if area.Capacity < 0 {
			return Venue{}, NewInvalidVenueError(fmt.Sprintf("Area %q has a negative capacity", area.Name))
		}
		if area.ID == uuid.Nil {
			area.ID = uuid.New()
		}
		areas = append(areas, area)
	}

	venue.ID = uuid.New()
	venue.Version = 1
	venue.Areas = areas

	err := repo.CreateVenue(ctx, venue)
	if err != nil {
		return Venue{}, err
	}

	return venue, nil
}

func DeleteVenue(ctx context.Context, repo Repository, confirmer Confirmer, id uuid.UUID) (bool, error) {
	venue, err := repo.GetVenue(ctx, id)
	if err != nil {
		return false, err
	}

	ok, err := confirmer.ConfirmAction(confirm.ActionDeleteVenue)
	if err != nil {
		return false, NewConfirmationFailedError("Failed to confirm deleting the venue", err)
	}
	if !ok {
		return false, nil
	}

	err = repo.DeleteVenue(ctx, venue)
	if err != nil {
		return false, err
	}

	return true, nil
}

func DeleteArea(ctx context.Context, repo Repository, confirmer Confirmer, venueID uuid.UUID, areaID uuid.UUID) (bool, error) {
	venue, err := repo.GetVenue(ctx, venueID)
	if err != nil {
		return false, err
	}

	idx := venue.areaIndex(areaID)
	if idx < 0 {
		return false, NewAreaDoesNotExistError(fmt.Sprintf("Area %q not found in venue %q", areaID, venueID))
	}

	ok, err := confirmer.ConfirmAction(confirm.ActionDeleteArea)
	if err != nil {
		return false, NewConfirmationFailedError("Failed to confirm deleting the area", err)
	}
	if !ok {
		return false, nil
	}

	venue.Areas = slices.Delete(slices.Clone(venue.Areas), idx, idx+1)
	venue.Version++

	err = repo.UpdateVenue(ctx, venue)
	if err != nil {
		return false, err
	}

	return true, nil
}
