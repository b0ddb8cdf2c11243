package model

// Product は商品1件。
// idは文字列のまま扱う（products.jsonの既存データと揃えるため）。
// priceも数値文字列のまま保持し、入力時にパース可能かだけ検証する。
type Product struct {
	ID       string `json:"id" bson:"id"`
	Title    string `json:"title" bson:"title"`
	Price    string `json:"price" bson:"price"`
	Category string `json:"category" bson:"category"`
	Messages string `json:"messages" bson:"messages"`
	Image    string `json:"image" bson:"image"`
}
