package dto

import "github.com/aulavista/horarios-api/internal/models"

// PlaceRequest places a class block into the weekly grid.
type PlaceRequest struct {
	Group     string  `json:"group" binding:"required"`
	Day       string  `json:"day" binding:"required"`
	Slot      string  `json:"slot" binding:"required"`
	Subject   string  `json:"subject" binding:"required"`
	TeacherID string  `json:"teacherId" binding:"required"`
	Duration  float64 `json:"duration" binding:"required,gt=0,lte=4"`
	ReplaceID string  `json:"replaceId,omitempty"`
}

// RemoveRequest removes a placed block. Item may name the start item or any
// of its continuations; the whole block goes either way.
type RemoveRequest struct {
	Group  string `json:"group" binding:"required"`
	Day    string `json:"day" binding:"required"`
	ItemID string `json:"itemId" binding:"required"`
}

// PlaceResponse echoes the committed block.
type PlaceResponse struct {
	Start         models.ScheduleItem   `json:"start"`
	Continuations []models.ScheduleItem `json:"continuations"`
	Slots         []string              `json:"slots"`
}

// RemoveResponse reports how many items were cleared from the grid.
type RemoveResponse struct {
	Removed int `json:"removed"`
}

// CellView is one slot of a group's weekly timetable.
type CellView struct {
	Day   string                `json:"day"`
	Slot  string                `json:"slot"`
	Items []models.ScheduleItem `json:"items"`
}

// GroupTimetable is the full grid of one group, slot ordered per day.
type GroupTimetable struct {
	Group string     `json:"group"`
	Days  []string   `json:"days"`
	Slots []string   `json:"slots"`
	Cells []CellView `json:"cells"`
}
