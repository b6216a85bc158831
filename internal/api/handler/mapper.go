package handler

import (
	"github.com/devcamper/devcamper-api/internal/core/ports"
)

// --- Request → Service input ---

func toBootcampFields(r bootcampRequest) ports.BootcampFields {
	return ports.BootcampFields{
		Name:          r.Name,
		Description:   r.Description,
		Website:       r.Website,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
		Careers:       r.Careers,
		Housing:       r.Housing,
		JobAssistance: r.JobAssistance,
		JobGuarantee:  r.JobGuarantee,
		AcceptGi:      r.AcceptGi,
	}
}

func toCourseFields(r courseRequest) ports.CourseFields {
	return ports.CourseFields{
		Title:                r.Title,
		Description:          r.Description,
		Weeks:                r.Weeks,
		Tuition:              r.Tuition,
		MinimumSkill:         r.MinimumSkill,
		ScholarshipAvailable: r.ScholarshipAvailable,
	}
}

func toReviewFields(r reviewRequest) ports.ReviewFields {
	return ports.ReviewFields{
		Title:  r.Title,
		Text:   r.Text,
		Rating: r.Rating,
	}
}

func toUserFields(r userRequest) ports.UserFields {
	return ports.UserFields{
		Name:     r.Name,
		Email:    r.Email,
		Role:     r.Role,
		Password: r.Password,
	}
}

func toRegisterInput(r registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     r.Role,
	}
}
