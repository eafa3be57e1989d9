package model

import (
	"strings"
	"time"
)

// Option is an entry of the assistance-type catalog, main type or sub-type.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
}

func (o Option) IsZero() bool {
	return o == Option{}
}

// Place is a district or a city.
type Place struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

func (p Place) IsZero() bool {
	return p == Place{}
}

type Attachment struct {
	Name        string `json:"name"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// JoinAttachments renders the attachment list the way the dashboard displays it.
func JoinAttachments(files []Attachment) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return strings.Join(names, ",")
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

var Statuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusResolved,
	StatusRejected,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Draft is the in-progress request being composed in the wizard.
type Draft struct {
	CurrentStep        int          `json:"currentStep"`
	RequesterName      string       `json:"requesterName"`
	RequesterPhone     string       `json:"requesterPhone"`
	RequestName        string       `json:"requestName"`
	RequestDescription string       `json:"requestDescription"`
	District           Place        `json:"district"`
	City               Place        `json:"city"`
	Street             string       `json:"street"`
	RequestType        Option       `json:"requestType"`
	RequestSubType     []Option     `json:"requestSubType"`
	NeedTransportation *bool        `json:"needTransportation"`
	NeedVolunteers     *bool        `json:"needVolunteers"`
	Attachments        []Attachment `json:"attachments"`
	RequestStatus      Status       `json:"requestStatus"`
	AssignedTo         string       `json:"assignedTo"`
}

// Request is the finished record produced when a draft is submitted.
type Request struct {
	ID               string           `json:"id"`
	RequesterDetails RequesterDetails `json:"requesterDetails"`
	RequestDetails   RequestDetails   `json:"requestDetails"`
	RequestStatus    RequestStatus    `json:"requestStatus"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

type RequesterDetails struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	District Place  `json:"district"`
	City     Place  `json:"city"`
	Street   string `json:"street"`
}

type RequestDetails struct {
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	Type               Option       `json:"type"`
	SubTypes           []Option     `json:"subTypes"`
	NeedTransportation *bool        `json:"needTransportation"`
	NeedVolunteers     *bool        `json:"needVolunteers"`
	Attachments        []Attachment `json:"attachments"`
}

type RequestStatus struct {
	Status     Status `json:"status"`
	AssignedTo string `json:"assignedTo"`
}
