package domain

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalUsers        int `json:"totalUsers"`
	TotalJobs         int `json:"totalJobs"`
	ActiveJobs        int `json:"activeJobs"`
	FeaturedJobs      int `json:"featuredJobs"`
	NewUsersThisMonth int `json:"newUsersThisMonth"`
	JobApplications   int `json:"jobApplications"`
}
