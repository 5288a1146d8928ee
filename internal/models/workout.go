package models

import "github.com/google/uuid"

type Workout struct {
	ID          uuid.UUID `json:"uuid"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsPublic    bool      `json:"is_public"`
	CreatorID   uuid.UUID `json:"creator_uuid"`
}

// WorkoutInstance marks a workout as a completed session rather than a
// template. Templates have no instance row.
type WorkoutInstance struct {
	WorkoutID      uuid.UUID `json:"workout_uuid"`
	TimestampStart int64     `json:"timestamp_start"`
	Duration       int       `json:"duration"`
}

type WorkoutEntry struct {
	WorkoutID             uuid.UUID `json:"workout_uuid"`
	Index                 int       `json:"index"`
	ExerciseID            uuid.UUID `json:"exercise_uuid"`
	RestCountdownDuration *int      `json:"rest_countdown_duration"`
	Note                  *string   `json:"note"`
	WeightUnit            *string   `json:"weight_unit"`
}

type WorkoutSet struct {
	WorkoutID  uuid.UUID `json:"workout_uuid"`
	EntryIndex int       `json:"entry_index"`
	Index      int       `json:"index"`
	Reps       *int      `json:"reps"`
	Weight     *float64  `json:"weight"`
	SetType    string    `json:"set_type"`
}

type Exercise struct {
	ID          uuid.UUID `json:"uuid"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	BodyPart    string    `json:"body_part"`
	Type        string    `json:"type"`
	CreatorID   uuid.UUID `json:"creator_uuid"`
	IsDisabled  bool      `json:"is_disabled"`
}
