package domain

// AdminID is the identity of the single administrator account.
const AdminID = 1

// DateLayout is the format of Post.Date, e.g. "October 16, 2026".
const DateLayout = "January 02, 2006"

// User is a registered account.
type User struct {
	ID       int        `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string     `json:"name" gorm:"type:varchar(100);not null"`
	Email    string     `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password string     `json:"-" gorm:"type:varchar(100);not null"`
	Posts    []*Post    `json:"-" gorm:"foreignKey:AuthorID"` // gorm only
	Comments []*Comment `json:"-" gorm:"foreignKey:AuthorID"` // gorm only
}

// IsAdmin reports whether u is the administrator.
func (u *User) IsAdmin() bool {
	return u != nil && u.ID == AdminID
}

// Post is a blog entry. Body holds Markdown.
type Post struct {
	ID       int        `json:"id" gorm:"primaryKey;autoIncrement"`
	AuthorID int        `json:"authorId" gorm:"not null;index"`
	Author   *User      `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Title    string     `json:"title" gorm:"type:varchar(250);uniqueIndex;not null"`
	Subtitle string     `json:"subtitle" gorm:"type:varchar(250);not null"`
	Date     string     `json:"date" gorm:"type:varchar(250);not null"`
	Body     string     `json:"body" gorm:"type:text;not null"`
	ImgURL   string     `json:"imgUrl" gorm:"column:img_url;type:varchar(250);not null"`
	Comments []*Comment `json:"-" gorm:"foreignKey:PostID"` // gorm only
}

func (Post) TableName() string { return "blog_posts" }

// Comment is a reader's reply on a post.
type Comment struct {
	ID       int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Text     string `json:"text" gorm:"type:text;not null"`
	AuthorID int    `json:"authorId" gorm:"not null;index"`
	Author   *User  `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	PostID   int    `json:"postId" gorm:"not null;index"`
}
