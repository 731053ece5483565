package catalog

import "github.com/de-tools/social-atlas/pkg/models/domain"

var definitions = map[domain.Network]func() []domain.MetricDefinition{
	domain.NetworkFacebook:  facebookMetrics,
	domain.NetworkInstagram: instagramMetrics,
	domain.NetworkLinkedIn:  linkedinMetrics,
	domain.NetworkTwitter:   twitterMetrics,
	domain.NetworkYouTube:   youtubeMetrics,
	domain.NetworkTikTok:    tiktokMetrics,
	domain.NetworkThreads:   threadsMetrics,
}

const (
	FollowersCount = "lifetime_snapshot.followers_count"
	FollowingCount = "lifetime_snapshot.following_count"
	Engagements    = "engagements"
	Impressions    = "impressions"
	Reach          = "impressions_unique"
	VideoViews     = "video_views"
)

func base(id, label string) domain.MetricDefinition {
	return domain.MetricDefinition{ID: id, Label: label}
}

func average(id, label string) domain.MetricDefinition {
	return domain.MetricDefinition{ID: id, Label: label, Aggregation: domain.AggregateAverage}
}

func sumOf(id, label string, deps ...string) domain.MetricDefinition {
	return domain.MetricDefinition{
		ID:         id,
		Label:      label,
		Calculated: true,
		DependsOn:  deps,
		Compute:    sumCompute(deps...),
	}
}

func rate(id, label, numerator, denominator string, scale float64) domain.MetricDefinition {
	return domain.MetricDefinition{
		ID:    id,
		Label: label,
		Ratio: &domain.Ratio{Numerator: numerator, Denominator: denominator, Scale: scale},
	}
}

func facebookMetrics() []domain.MetricDefinition {
	return []domain.MetricDefinition{
		base(FollowersCount, "Followers"),
		base("net_follower_growth", "Net Follower Growth"),
		base("followers_gained", "Followers Gained"),
		base("followers_lost", "Followers Lost"),
		base(Impressions, "Impressions"),
		base(Reach, "Reach"),
		base(VideoViews, "Video Views"),
		base("reactions", "Reactions"),
		base("comments_count", "Comments"),
		base("shares_count", "Shares"),
		base("post_link_clicks", "Post Link Clicks"),
		base("post_content_clicks_other", "Other Post Clicks"),
		sumOf(Engagements, "Engagements",
			"reactions", "comments_count", "shares_count", "post_link_clicks", "post_content_clicks_other"),
		rate("engagement_rate_per_impression", "Engagement Rate (per Impression)", Engagements, Impressions, 100),
		rate("engagement_rate_per_reach", "Engagement Rate (per Reach)", Engagements, Reach, 100),
		rate("video_view_rate", "Video View Rate", VideoViews, Impressions, 100),
		{
			ID:         "net_follower_change",
			Label:      "Net Follower Change",
			Calculated: true,
			DependsOn:  []string{"followers_gained", "followers_lost"},
			Compute:    differenceCompute("followers_gained", "followers_lost"),
		},
	}
}

func instagramMetrics() []domain.MetricDefinition {
	return []domain.MetricDefinition{
		base(FollowersCount, "Followers"),
		average(FollowingCount, "Following (avg)"),
		base("net_follower_growth", "Net Follower Growth"),
		base("followers_gained", "Followers Gained"),
		base("followers_lost", "Followers Lost"),
		base(Impressions, "Impressions"),
		base(Reach, "Reach"),
		base(VideoViews, "Video Views"),
		base("likes", "Likes"),
		base("comments_count", "Comments"),
		base("saves", "Saves"),
		base("shares_count", "Shares"),
		base("story_replies", "Story Replies"),
		sumOf(Engagements, "Engagements",
			"likes", "comments_count", "saves", "shares_count", "story_replies"),
		rate("engagement_rate_per_impression", "Engagement Rate (per Impression)", Engagements, Impressions, 100),
		rate("engagement_rate_per_reach", "Engagement Rate (per Reach)", Engagements, Reach, 100),
		rate("engagement_per_view", "Engagements per View", Engagements, VideoViews, 1),
		rate("saves_rate", "Saves Rate", "saves", Reach, 100),
	}
}

func linkedinMetrics() []domain.MetricDefinition {
	return []domain.MetricDefinition{
		base(FollowersCount, "Followers"),
		base("net_follower_growth", "Net Follower Growth"),
		base("followers_gained_organic", "Organic Followers Gained"),
		base("followers_gained_paid", "Paid Followers Gained"),
		base(Impressions, "Impressions"),
		base(Reach, "Reach"),
		base("reactions", "Reactions"),
		base("comments_count", "Comments"),
		base("shares_count", "Shares"),
		base("post_clicks", "Post Clicks"),
		base(Engagements, "Engagements"),
		base(VideoViews, "Video Views"),
	}
}

func twitterMetrics() []domain.MetricDefinition {
	return []domain.MetricDefinition{
		base(FollowersCount, "Followers"),
		base("net_follower_growth", "Net Follower Growth"),
		base(Impressions, "Impressions"),
		base(Engagements, "Engagements"),
		base("likes", "Likes"),
		base("comments_count", "Replies"),
		base("shares_count", "Reposts"),
		base("post_link_clicks", "Post Link Clicks"),
		base("post_media_views", "Media Views"),
		base(VideoViews, "Video Views"),
	}
}

func youtubeMetrics() []domain.MetricDefinition {
	return []domain.MetricDefinition{
		base(FollowersCount, "Subscribers"),
		base("net_follower_growth", "Net Subscriber Growth"),
		base("followers_gained", "Subscribers Gained"),
		base("followers_lost", "Subscribers Lost"),
		base(VideoViews, "Video Views"),
		base("video_view_time", "Watch Time (min)"),
		base("likes", "Likes"),
		base("dislikes", "Dislikes"),
		base("comments_count", "Comments"),
		base("shares_count", "Shares"),
		base("videos_added_to_playlist", "Added to Playlists"),
	}
}

func tiktokMetrics() []domain.MetricDefinition {
	return []domain.MetricDefinition{
		base(FollowersCount, "Followers"),
		base("net_follower_growth", "Net Follower Growth"),
		base(Reach, "Reach"),
		base(VideoViews, "Video Views"),
		base("profile_views", "Profile Views"),
		base("likes", "Likes"),
		base("comments_count", "Comments"),
		base("shares_count", "Shares"),
	}
}

func threadsMetrics() []domain.MetricDefinition {
	return []domain.MetricDefinition{
		base(FollowersCount, "Followers"),
		base("lifetime_snapshot.followers_by_country", "Followers by Country"),
		base("views", "Views"),
		base("likes", "Likes"),
		base("replies", "Replies"),
		base("reposts", "Reposts"),
		base("quotes", "Quotes"),
		base("shares", "Shares"),
	}
}
