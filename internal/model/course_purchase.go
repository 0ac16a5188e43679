package model

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseFailed    PurchaseStatus = "failed"
)

// CoursePurchase 购买记录，SessionID 为支付方会话 ID（唯一）
// swagger:model CoursePurchase
type CoursePurchase struct {
	BaseModel
	UserID    uint           `gorm:"index;not null" json:"userId"`
	CourseID  uint           `gorm:"index;not null" json:"courseId"`
	SessionID string         `gorm:"size:255;uniqueIndex;not null" json:"paymentId"`
	Price     float64        `gorm:"type:decimal(10,2)" json:"price"`
	Amount    float64        `gorm:"type:decimal(10,2)" json:"amount"`
	Status    PurchaseStatus `gorm:"size:20;default:'pending';index" json:"status"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (CoursePurchase) TableName() string {
	return "course_purchases"
}

// CheckoutSession 支付方返回的会话句柄
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// PaymentEvent is an already verified checkout.session.completed event.
type PaymentEvent struct {
	Type        string
	SessionID   string
	UserID      uint
	CourseID    uint
	AmountTotal float64
}

// CourseWithPurchaseStatus 课程详情及当前用户是否已购买
type CourseWithPurchaseStatus struct {
	Course    *Course `json:"course"`
	Purchased bool    `json:"purchased"`
}
