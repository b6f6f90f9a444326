package extract

// DefaultDictionary returns the built-in entity dictionary used when
// no caller dictionary is configured. It covers common Chinese tech
// and academia names so the pipeline is useful out of the box.
func DefaultDictionary() map[string]string {
	return map[string]string{
		// People
		"张三":      "Person",
		"李四":      "Person",
		"王五":      "Person",
		"马云":      "Person",
		"马化腾":     "Person",
		"李彦宏":     "Person",
		"任正非":     "Person",
		"雷军":      "Person",
		"李飞飞":     "Person",
		"史蒂夫·乔布斯": "Person",
		"蒂姆·库克":   "Person",
		"比尔·盖茨":   "Person",
		"萨姆·奥特曼":  "Person",
		"拉里·佩奇":   "Person",
		"谢尔盖·布林":  "Person",

		// Organizations
		"北京大学":   "Organization",
		"清华大学":   "Organization",
		"复旦大学":   "Organization",
		"上海交通大学": "Organization",
		"浙江大学":   "Organization",
		"斯坦福大学":  "Organization",
		"中国科学院":  "Organization",
		"阿里巴巴":   "Organization",
		"阿里巴巴集团": "Organization",
		"腾讯":     "Organization",
		"腾讯公司":   "Organization",
		"百度":     "Organization",
		"华为":     "Organization",
		"小米":     "Organization",
		"字节跳动":   "Organization",
		"苹果公司":   "Organization",
		"微软":     "Organization",
		"微软公司":   "Organization",
		"谷歌":     "Organization",
		"谷歌公司":   "Organization",
		"OpenAI": "Organization",

		// Locations
		"北京":  "Location",
		"北京市": "Location",
		"上海":  "Location",
		"上海市": "Location",
		"深圳":  "Location",
		"深圳市": "Location",
		"杭州":  "Location",
		"杭州市": "Location",
		"海淀区": "Location",
		"南山区": "Location",
		"西湖区": "Location",
		"中关村": "Location",
		"中国":  "Location",
		"美国":  "Location",

		// Products
		"iPhone":  "Product",
		"iPad":    "Product",
		"MacBook": "Product",
		"Windows": "Product",
		"Android": "Product",
		"微信":      "Product",
		"淘宝":      "Product",
		"天猫":      "Product",
		"支付宝":     "Product",
		"阿里云":     "Product",
		"ChatGPT": "Product",
		"GPT-4":   "Product",

		// Concepts
		"人工智能": "Concept",
		"机器学习": "Concept",
		"深度学习": "Concept",
		"云计算":  "Concept",
		"大数据":  "Concept",
	}
}
