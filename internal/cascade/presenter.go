package cascade

// Presenter：列表界面。所有方法只会在 Controller.Run 所在的协程上被调用。
type Presenter interface {
	// ShowLoading 显示阻塞式加载提示，期间的点击与返回被忽略
	ShowLoading(message string)
	HideLoading()
	ShowList(title string, names []string, backVisible bool)
	// Notify 显示短暂的非阻塞提示
	Notify(message string)
	// Navigate 把县级 weather id 交给天气详情界面；之后本界面结束
	Navigate(weatherID string)
}

const (
	TitleChina     = "中国"
	LoadingMessage = "正在加载..."
	FailureNotice  = "加载失败"
)
