package classifier

// Topic is the label assigned to a comment.
type Topic string

// Topics of the Bon Yurt Morenitas campaign. Other campaigns declare their
// own labels in their rule set; the engine never depends on these values.
const (
	TopicPriceComplaints      Topic = "Price Complaints"
	TopicNostalgia            Topic = "Nostalgia and Positive Memories"
	TopicQualityCriticism     Topic = "Product Quality Criticism"
	TopicPositiveOpinion      Topic = "Positive Product Opinion"
	TopicInfluencerEngagement Topic = "Influencer/Celebrity Engagement"
	TopicAccessibilityLuxury  Topic = "Accessibility/Luxury Commentary"
	TopicPromotionMarketing   Topic = "Promotion/Marketing Commentary"
	TopicAvailability         Topic = "Availability and Distribution"
	TopicSimpleInteractions   Topic = "Simple/Off-topic Interactions"
	TopicOtherProductComments Topic = "Other Product Commentary"
	TopicOther                Topic = "Other"
)

func (t Topic) String() string {
	return string(t)
}
